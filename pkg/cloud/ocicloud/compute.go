package ocicloud

import (
	"context"
	"fmt"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/core"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// Compute resolves instance metadata from the Core service.
type Compute struct {
	client core.ComputeClient
}

func NewCompute(client core.ComputeClient) *Compute {
	return &Compute{client: client}
}

func (c *Compute) ProviderType() cloud.ProviderType { return cloud.ProviderOCI }

func (c *Compute) GetInstance(ctx context.Context, resourceID string) (*models.ResourceMetadata, error) {
	resp, err := c.client.GetInstance(ctx, core.GetInstanceRequest{
		InstanceId: common.String(resourceID),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get instance %s: %w", resourceID, err)
	}

	instance := resp.Instance
	return &models.ResourceMetadata{
		ResourceID:           deref(instance.Id),
		DisplayName:          deref(instance.DisplayName),
		CompartmentOrAccount: deref(instance.CompartmentId),
		Shape:                deref(instance.Shape),
		Zone:                 deref(instance.AvailabilityDomain),
		FreeformTags:         instance.FreeformTags,
		DefinedTags:          flattenDefinedTags(instance.DefinedTags),
	}, nil
}

// flattenDefinedTags joins the two-level OCI tag namespace into dotted keys.
func flattenDefinedTags(tags map[string]map[string]interface{}) map[string]string {
	out := map[string]string{}
	for namespace, inner := range tags {
		for key, value := range inner {
			out[namespace+"."+key] = fmt.Sprint(value)
		}
	}
	return out
}
