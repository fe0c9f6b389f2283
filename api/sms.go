package api

import (
	"context"
)

type SMSTotals struct {
	TotalSent    int `json:"totalSent"`
	TotalSuccess int `json:"totalSuccess"`
	TotalFailed  int `json:"totalFailed"`
}

type SMSDetailed struct {
	Stats SMSTotals  `json:"stats"`
	Logs  []LogEntry `json:"logs"`
}

type SMSAnalytics struct {
	SMSTotals
	SuccessRate     float64 `json:"successRate"`
	AvgResponseTime float64 `json:"avgResponseTime"`
	TimeoutRate     float64 `json:"timeoutRate"`
}

type HourlyBucket struct {
	Hour    string `json:"hour"`
	Count   int    `json:"count"`
	Sent    int    `json:"sent"`
	Success int    `json:"success"`
}

type ApprovalType struct {
	Type    string  `json:"type"`
	Total   int     `json:"total"`
	Success int     `json:"success"`
	Rate    float64 `json:"rate"`
	Status  string  `json:"status"`
}

type SMSIssue struct {
	IssueCode     string   `json:"issueCode"`
	IssueCategory string   `json:"issueCategory"`
	IssueTitle    string   `json:"issueTitle"`
	Count         int      `json:"count"`
	Stores        []string `json:"stores"`
}

type SystemStatus struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	LastCheck Time   `json:"lastCheck"`
}

type hourlyList []HourlyBucket

func (l *hourlyList) UnmarshalJSON(data []byte) error {
	*l = decodeList[HourlyBucket](data, "hourly")
	return nil
}

type approvalList []ApprovalType

func (l *approvalList) UnmarshalJSON(data []byte) error {
	*l = decodeList[ApprovalType](data, "approvalTypes")
	return nil
}

type issueList []SMSIssue

func (l *issueList) UnmarshalJSON(data []byte) error {
	*l = decodeList[SMSIssue](data, "issues")
	return nil
}

type SMSAPI struct {
	c *Client
}

func NewSMSAPI(c *Client) *SMSAPI {
	return &SMSAPI{c: c}
}

func (s *SMSAPI) Client() *Client {
	return s.c
}

func (s *SMSAPI) Analytics(ctx context.Context, scope string) (*SMSAnalytics, error) {
	var out SMSAnalytics
	if err := s.c.getJSON(ctx, "/sms/analytics", params("scope", scope), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SMSAPI) Stats(ctx context.Context, scope string) (*SMSAnalytics, error) {
	var out SMSAnalytics
	if err := s.c.getJSON(ctx, "/sms/stats", params("scope", scope), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SMSAPI) Detailed(ctx context.Context, scope string) (*SMSDetailed, error) {
	var out SMSDetailed
	if err := s.c.getJSON(ctx, "/sms/detailed", params("scope", scope), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SMSAPI) HourlyDistribution(ctx context.Context, scope string) ([]HourlyBucket, error) {
	var out hourlyList
	if err := s.c.getJSON(ctx, "/sms/hourly-distribution", params("scope", scope), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SMSAPI) ApprovalTypes(ctx context.Context, scope string) ([]ApprovalType, error) {
	var out approvalList
	if err := s.c.getJSON(ctx, "/sms/approval-types", params("scope", scope), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SMSAPI) ErrorAnalysis(ctx context.Context, scope string) ([]SMSIssue, error) {
	var out issueList
	if err := s.c.getJSON(ctx, "/sms/error-analysis", params("scope", scope), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SMSAPI) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	var out SystemStatus
	if err := s.c.getJSON(ctx, "/sms/system-status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
