// Package apiclient 学校课表接口客户端
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"schedule-viewer/config"
	"schedule-viewer/internal/model"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultPageSize = 50
	// 错误响应体只读取前 64KB
	maxErrorBody = 64 << 10
)

// APIError 上游返回非 2xx
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrUnavailable 网络层失败（超时、连接中断等）
var ErrUnavailable = errors.New("không thể kết nối máy chủ lịch học")

// ScheduleFetcher 获取学生课表原始响应
type ScheduleFetcher interface {
	FetchSchedule(ctx context.Context, studentID string) (json.RawMessage, error)
}

// Client 上游课表接口客户端
type Client struct {
	endpoint   string
	pageSize   int
	timeout    time.Duration
	httpClient *http.Client
	now        func() time.Time
	logger     *zap.Logger
}

// NewClient 根据配置创建客户端
func NewClient(cfg *config.UpstreamConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		pageSize:   pageSize,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
		logger:     logger,
	}
}

// FetchSchedule 请求学生课表，返回可直接缓存的原始响应体
//
// 响应体会先按 {data:[...]} 校验一次，结构不符视为失败，避免把坏数据写入缓存。
func (c *Client) FetchSchedule(ctx context.Context, studentID string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(model.ScheduleRequest{
		Ngay:      c.now().UTC().Format(time.RFC3339),
		PageIndex: 1,
		PageSize:  c.pageSize,
		StudentID: studentID,
	})
	if err != nil {
		return nil, fmt.Errorf("编码请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("课表接口请求失败",
			zap.String("student_id", studentID),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp)}
		c.logger.Warn("课表接口返回错误状态",
			zap.String("student_id", studentID),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return nil, apiErr
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取响应失败: %v", ErrUnavailable, err)
	}

	var parsed model.ScheduleResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.logger.Warn("课表接口响应结构异常", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	c.logger.Debug("课表接口请求完成",
		zap.String("student_id", studentID),
		zap.Int("items", len(parsed.Items)),
		zap.Duration("latency", time.Since(start)),
	)
	return json.RawMessage(raw), nil
}

// errorMessage 优先取 JSON 的 message 字段，其次取纯文本，最后给出状态码
func errorMessage(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	text := strings.TrimSpace(string(b))

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
		// 合法 JSON 但无 message，不把原始 JSON 暴露给用户
		text = ""
	}
	if text != "" {
		return text
	}
	return fmt.Sprintf("API request failed: %d", resp.StatusCode)
}
