package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модели

// UpsertRuleRequest запрос на создание или обновление правила доступности
// На пару (специалист, день недели) существует не более одного правила
type UpsertRuleRequest struct {
	BusinessID     int64
	ProfessionalID int64
	Weekday        int // 0 = воскресенье ... 6 = суббота

	StartTime types.TimeString
	EndTime   types.TimeString

	BreakStart *types.TimeString
	BreakEnd   *types.TimeString
}

// DeactivateRuleRequest запрос на отключение правила на день недели
type DeactivateRuleRequest struct {
	BusinessID     int64
	ProfessionalID int64
	Weekday        int
}

// CreateTimeBlockRequest запрос на создание блокировки времени
// ProfessionalID nil означает блокировку всего бизнеса
type CreateTimeBlockRequest struct {
	BusinessID     int64
	ProfessionalID *int64

	StartDatetime time.Time
	EndDatetime   time.Time

	Reason *string
}

// Response модели

// RuleResponse ответ с данными правила доступности
type RuleResponse struct {
	ID             int64 `json:"id"`
	ProfessionalID int64 `json:"professionalId"`
	Weekday        int   `json:"weekday"`

	StartTime string `json:"startTime"` // "10:00"
	EndTime   string `json:"endTime"`   // "18:00"

	BreakStart *string `json:"breakStart,omitempty"`
	BreakEnd   *string `json:"breakEnd,omitempty"`

	IsActive bool `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RuleListResponse ответ со списком правил специалиста
type RuleListResponse struct {
	Rules []RuleResponse `json:"rules"`
}

// TimeBlockResponse ответ с данными блокировки времени
type TimeBlockResponse struct {
	ID             int64  `json:"id"`
	BusinessID     int64  `json:"businessId"`
	ProfessionalID *int64 `json:"professionalId,omitempty"`

	StartDatetime time.Time `json:"startDatetime"`
	EndDatetime   time.Time `json:"endDatetime"`

	Reason *string `json:"reason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Методы конвертации

// FromDomainRule конвертирует domain модель в DTO
func FromDomainRule(r *domain.AvailabilityRule) *RuleResponse {
	if r == nil {
		return nil
	}

	resp := &RuleResponse{
		ID:             r.ID,
		ProfessionalID: r.ProfessionalID,
		Weekday:        int(r.Weekday),
		StartTime:      r.StartTime.String(),
		EndTime:        r.EndTime.String(),
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}

	if r.BreakStart != nil {
		s := r.BreakStart.String()
		resp.BreakStart = &s
	}
	if r.BreakEnd != nil {
		s := r.BreakEnd.String()
		resp.BreakEnd = &s
	}

	return resp
}

// FromDomainRuleList конвертирует список domain моделей в DTO
func FromDomainRuleList(rules []*domain.AvailabilityRule) *RuleListResponse {
	if rules == nil {
		return &RuleListResponse{Rules: []RuleResponse{}}
	}

	resp := &RuleListResponse{
		Rules: make([]RuleResponse, len(rules)),
	}

	for i, rule := range rules {
		if ruleResp := FromDomainRule(rule); ruleResp != nil {
			resp.Rules[i] = *ruleResp
		}
	}

	return resp
}

// FromDomainTimeBlock конвертирует domain модель в DTO
func FromDomainTimeBlock(b *domain.TimeBlock) *TimeBlockResponse {
	if b == nil {
		return nil
	}

	return &TimeBlockResponse{
		ID:             b.ID,
		BusinessID:     b.BusinessID,
		ProfessionalID: b.ProfessionalID,
		StartDatetime:  b.StartDatetime,
		EndDatetime:    b.EndDatetime,
		Reason:         b.Reason,
		CreatedAt:      b.CreatedAt,
	}
}
