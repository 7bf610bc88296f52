package awscloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/cloudnative-ops/runbook-synthesizer/pkg/cloud"
	"github.com/cloudnative-ops/runbook-synthesizer/pkg/models"
)

// maxMetricNames caps how many distinct metrics are sampled per resource.
const maxMetricNames = 5

const metricPeriodSeconds = 60

// Metrics samples recent CloudWatch datapoints for an instance.
type Metrics struct {
	client    *cloudwatch.Client
	namespace string
}

// NewMetrics builds the adapter. namespace defaults to AWS/EC2.
func NewMetrics(client *cloudwatch.Client, namespace string) *Metrics {
	if namespace == "" {
		namespace = "AWS/EC2"
	}
	return &Metrics{client: client, namespace: namespace}
}

func (m *Metrics) ProviderType() cloud.ProviderType { return cloud.ProviderAWS }

func (m *Metrics) FetchMetrics(ctx context.Context, resourceID string, lookback time.Duration) ([]models.MetricSnapshot, error) {
	listed, err := m.client.ListMetrics(ctx, &cloudwatch.ListMetricsInput{
		Namespace: aws.String(m.namespace),
		Dimensions: []cwtypes.DimensionFilter{
			{Name: aws.String("InstanceId"), Value: aws.String(resourceID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list metrics for %s: %w", resourceID, err)
	}

	end := time.Now().UTC()
	start := end.Add(-lookback)

	var snapshots []models.MetricSnapshot
	for i, metric := range listed.Metrics {
		if i >= maxMetricNames {
			break
		}
		stats, err := m.client.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  metric.Namespace,
			MetricName: metric.MetricName,
			Dimensions: metric.Dimensions,
			StartTime:  aws.Time(start),
			EndTime:    aws.Time(end),
			Period:     aws.Int32(metricPeriodSeconds),
			Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
		})
		if err != nil {
			return nil, fmt.Errorf("get statistics for %s/%s: %w",
				aws.ToString(metric.Namespace), aws.ToString(metric.MetricName), err)
		}
		for _, dp := range stats.Datapoints {
			snapshots = append(snapshots, models.MetricSnapshot{
				Name:      aws.ToString(metric.MetricName),
				Namespace: aws.ToString(metric.Namespace),
				Value:     aws.ToFloat64(dp.Average),
				Unit:      string(dp.Unit),
				Timestamp: aws.ToTime(dp.Timestamp),
			})
		}
	}
	return snapshots, nil
}
