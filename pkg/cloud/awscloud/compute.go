package awscloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/smithy-go"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// Compute resolves EC2 instance metadata.
type Compute struct {
	client *ec2.Client
}

func NewCompute(client *ec2.Client) *Compute {
	return &Compute{client: client}
}

func (c *Compute) ProviderType() cloud.ProviderType { return cloud.ProviderAWS }

func (c *Compute) GetInstance(ctx context.Context, resourceID string) (*models.ResourceMetadata, error) {
	out, err := c.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{resourceID},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidInstanceID.NotFound" {
			return nil, nil
		}
		return nil, fmt.Errorf("describe instance %s: %w", resourceID, err)
	}

	for _, reservation := range out.Reservations {
		for _, instance := range reservation.Instances {
			meta := &models.ResourceMetadata{
				ResourceID:   aws.ToString(instance.InstanceId),
				Shape:        string(instance.InstanceType),
				FreeformTags: map[string]string{},
			}
			if instance.Placement != nil {
				meta.Zone = aws.ToString(instance.Placement.AvailabilityZone)
			}
			for _, tag := range instance.Tags {
				key := aws.ToString(tag.Key)
				value := aws.ToString(tag.Value)
				if key == "Name" {
					meta.DisplayName = value
				}
				meta.FreeformTags[key] = value
			}
			return meta, nil
		}
	}
	return nil, nil
}
