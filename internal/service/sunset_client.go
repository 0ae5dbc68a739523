package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"smarthub/internal/metrics"
	"smarthub/internal/schedule"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// sunsetLayout sunrise-sunset.org 返回 12 小时制时间（UTC），如 "11:14:23 PM"
const sunsetLayout = "3:04:05 PM"

// SunsetResponse sunrise-sunset.org API 响应
type SunsetResponse struct {
	Results struct {
		Sunrise string `json:"sunrise"`
		Sunset  string `json:"sunset"`
	} `json:"results"`
	Status string `json:"status"`
}

// SunsetClientConfig 日落查询配置
type SunsetClientConfig struct {
	URL     string
	Lat     float64
	Lng     float64
	Offset  time.Duration
	Timeout time.Duration
}

// SunsetClient 日落时间 API 客户端
type SunsetClient struct {
	httpClient *resty.Client
	cfg        SunsetClientConfig
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

var _ schedule.SunsetSource = (*SunsetClient)(nil)

// NewSunsetClient 创建日落客户端（不重试，失败直接返回 ErrUpstream）
func NewSunsetClient(cfg SunsetClientConfig, logger *zap.Logger, m *metrics.Metrics) *SunsetClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &SunsetClient{
		httpClient: client,
		cfg:        cfg,
		logger:     logger,
		metrics:    m,
	}
}

// Sunset returns today's sunset shifted by the configured offset.
func (c *SunsetClient) Sunset(ctx context.Context) (schedule.TimeOfDay, error) {
	start := time.Now()
	t, err := c.fetch(ctx)
	c.metrics.ObserveSunsetLatency(time.Since(start))
	c.metrics.ObserveSunsetLookup("upstream", err)
	return t, err
}

func (c *SunsetClient) fetch(ctx context.Context) (schedule.TimeOfDay, error) {
	var response SunsetResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat": strconv.FormatFloat(c.cfg.Lat, 'f', -1, 64),
			"lng": strconv.FormatFloat(c.cfg.Lng, 'f', -1, 64),
		}).
		SetResult(&response).
		Get(c.cfg.URL)

	if err != nil {
		c.logger.Error("Sunset API call failed", zap.String("url", c.cfg.URL), zap.Error(err))
		return 0, fmt.Errorf("%w: sunset api: %v", ErrUpstream, err)
	}
	if resp.IsError() {
		c.logger.Error("Sunset API returned HTTP error",
			zap.Int("status_code", resp.StatusCode()),
		)
		return 0, fmt.Errorf("%w: sunset api returned HTTP %d", ErrUpstream, resp.StatusCode())
	}
	if response.Status != "OK" {
		c.logger.Error("Sunset API returned error status", zap.String("status", response.Status))
		return 0, fmt.Errorf("%w: sunset api status %q", ErrUpstream, response.Status)
	}

	parsed, err := time.Parse(sunsetLayout, strings.TrimSpace(response.Results.Sunset))
	if err != nil {
		c.logger.Error("Failed to parse sunset time",
			zap.String("sunset", response.Results.Sunset),
			zap.Error(err),
		)
		return 0, fmt.Errorf("%w: unexpected sunset %q", ErrUpstream, response.Results.Sunset)
	}

	sunset := schedule.FromTime(parsed).Add(c.cfg.Offset)
	c.logger.Debug("Resolved sunset",
		zap.String("upstream", response.Results.Sunset),
		zap.String("local", sunset.String()),
	)
	return sunset, nil
}
