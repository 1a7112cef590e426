// Package authz решает, может ли вызывающий выполнить действие над ресурсом.
//
// Policy не знает про HTTP: на вход ей подаются Identity (email и роль из хранилища),
// действие и ресурс. RoleGuard связывает её с маршрутизатором.
package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/linemk/tool-shop/internal/domain/models"
)

var ErrForbidden = errors.New("forbidden")

// Action - действие, требующее проверки прав
type Action string

const (
	ActionToolCreate  Action = "tool:create"
	ActionToolDelete  Action = "tool:delete"
	ActionUserPromote Action = "user:promote"
	// ActionOrderList - просмотр заказов конкретного покупателя
	ActionOrderList Action = "order:list"
)

// Identity - кто выполняет запрос. Role пустая, если записи пользователя нет
type Identity struct {
	Email string
	Role  string
}

func (i *Identity) isAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Resource - над чем выполняется действие; Owner - email владельца, если он есть
type Resource struct {
	Owner string
}

// DeniedError описывает отказ; errors.Is(err, ErrForbidden) == true
type DeniedError struct {
	Subject string
	Action  Action
	Reason  string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("authorization denied: subject=%q action=%q reason=%q", e.Subject, e.Action, e.Reason)
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrForbidden
}

type rule func(id *Identity, res Resource) (bool, string)

func adminOnly(id *Identity, _ Resource) (bool, string) {
	return id.isAdmin(), "admin role required"
}

func ownerOrAdmin(id *Identity, res Resource) (bool, string) {
	return id.isAdmin() || (res.Owner != "" && strings.EqualFold(id.Email, res.Owner)), "not the owner"
}

// Policy - набор правил по действиям. Неизвестное действие запрещено
type Policy struct {
	rules map[Action]rule
}

// NewPolicy возвращает политику магазина
func NewPolicy() *Policy {
	return &Policy{
		rules: map[Action]rule{
			ActionToolCreate:  adminOnly,
			ActionToolDelete:  adminOnly,
			ActionUserPromote: adminOnly,
			ActionOrderList:   ownerOrAdmin,
		},
	}
}

// Authorize возвращает nil, если действие разрешено, иначе *DeniedError
func (p *Policy) Authorize(id *Identity, action Action, res Resource) error {
	if id == nil || id.Email == "" {
		return &DeniedError{Action: action, Reason: "no identity provided"}
	}
	r, ok := p.rules[action]
	if !ok {
		return &DeniedError{Subject: id.Email, Action: action, Reason: "unknown action"}
	}
	if allowed, reason := r(id, res); !allowed {
		return &DeniedError{Subject: id.Email, Action: action, Reason: reason}
	}
	return nil
}
