// Package factory assembles a provider adapter family from configuration.
// It lives apart from pkg/cloud so the per-provider packages can depend on
// the interfaces without a cycle.
package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/core"
	"github.com/oracle/oci-go-sdk/v65/loggingsearch"
	"github.com/oracle/oci-go-sdk/v65/monitoring"
	"github.com/oracle/oci-go-sdk/v65/objectstorage"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud/awscloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud/localcloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud/ocicloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/config"
)

// NewAdapterSet builds the adapter family selected by cfg.Provider.
// Configuration validation has already rejected unknown providers, but the
// default arm guards direct callers.
func NewAdapterSet(ctx context.Context, cfg config.CloudConfig) (cloud.AdapterSet, error) {
	switch cloud.ProviderType(cfg.Provider) {
	case cloud.ProviderLocal:
		return newLocalSet(cfg.Local), nil
	case cloud.ProviderAWS:
		return newAWSSet(ctx, cfg.AWS)
	case cloud.ProviderOCI:
		return newOCISet(ctx, cfg.OCI)
	default:
		return cloud.AdapterSet{}, fmt.Errorf("unknown cloud provider %q", cfg.Provider)
	}
}

func newLocalSet(settings config.LocalSettings) cloud.AdapterSet {
	return cloud.AdapterSet{
		Storage: localcloud.NewStorage(settings.RunbookDir),
		Compute: localcloud.NewCompute(),
		Metrics: localcloud.NewMetrics(),
		Logs:    localcloud.NewLogs(),
	}
}

func newAWSSet(ctx context.Context, settings config.AWSSettings) (cloud.AdapterSet, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if settings.Region != "" {
		opts = append(opts, awsconfig.WithRegion(settings.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cloud.AdapterSet{}, fmt.Errorf("load aws configuration: %w", err)
	}

	return cloud.AdapterSet{
		Storage: awscloud.NewStorage(s3.NewFromConfig(awsCfg)),
		Compute: awscloud.NewCompute(ec2.NewFromConfig(awsCfg)),
		Metrics: awscloud.NewMetrics(cloudwatch.NewFromConfig(awsCfg), settings.MetricNamespace),
		Logs:    awscloud.NewLogs(cloudwatchlogs.NewFromConfig(awsCfg), settings.LogGroup),
	}, nil
}

func newOCISet(ctx context.Context, settings config.OCISettings) (cloud.AdapterSet, error) {
	provider := common.DefaultConfigProvider()

	storageClient, err := objectstorage.NewObjectStorageClientWithConfigurationProvider(provider)
	if err != nil {
		return cloud.AdapterSet{}, fmt.Errorf("create object storage client: %w", err)
	}
	computeClient, err := core.NewComputeClientWithConfigurationProvider(provider)
	if err != nil {
		return cloud.AdapterSet{}, fmt.Errorf("create compute client: %w", err)
	}
	monitoringClient, err := monitoring.NewMonitoringClientWithConfigurationProvider(provider)
	if err != nil {
		return cloud.AdapterSet{}, fmt.Errorf("create monitoring client: %w", err)
	}
	logClient, err := loggingsearch.NewLogSearchClientWithConfigurationProvider(provider)
	if err != nil {
		return cloud.AdapterSet{}, fmt.Errorf("create log search client: %w", err)
	}

	namespace := settings.Namespace
	if namespace == "" {
		resp, err := storageClient.GetNamespace(ctx, objectstorage.GetNamespaceRequest{})
		if err != nil {
			return cloud.AdapterSet{}, fmt.Errorf("resolve object storage namespace: %w", err)
		}
		if resp.Value != nil {
			namespace = *resp.Value
		}
	}

	return cloud.AdapterSet{
		Storage: ocicloud.NewStorage(storageClient, namespace),
		Compute: ocicloud.NewCompute(computeClient),
		Metrics: ocicloud.NewMetrics(monitoringClient, settings.CompartmentID, settings.MetricNamespace),
		Logs:    ocicloud.NewLogs(logClient, settings.CompartmentID, settings.LogGroupID),
	}, nil
}
