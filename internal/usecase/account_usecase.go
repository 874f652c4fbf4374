package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finkit/glcore/internal/domain"
)

// AccountUseCase handles chart of accounts business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, auditRepo AuditRepository, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Code       string
	Name       string
	Type       domain.AccountType
	Category   string
	ParentCode string
	IsSummary  bool
	Currency   string
}

// CreateAccount creates a new account in the tenant's chart of accounts.
// Child accounts inherit placement under their parent and must share the
// parent's type. Postings may only ever land on leaf (non-summary) accounts.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, actor domain.Actor, input CreateAccountInput) (*domain.Account, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	if err := domain.ValidateAccountCode(input.Code); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	if !domain.ValidAccountType(input.Type) {
		return nil, fmt.Errorf("%w: invalid account type %q", domain.ErrValidation, input.Type)
	}

	if _, err := uc.accountRepo.GetByCode(ctx, actor.TenantID, input.Code); err == nil {
		return nil, fmt.Errorf("%w: account code %s already exists", domain.ErrValidation, input.Code)
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	level := 0
	path := input.Code
	if input.ParentCode != "" {
		parent, err := uc.accountRepo.GetByCode(ctx, actor.TenantID, input.ParentCode)
		if err != nil {
			return nil, fmt.Errorf("parent account: %w", err)
		}
		if parent.Type != input.Type {
			return nil, fmt.Errorf("%w: account type %s does not match parent type %s", domain.ErrValidation, input.Type, parent.Type)
		}
		if !parent.IsSummary {
			return nil, fmt.Errorf("%w: parent account %s is not a summary account", domain.ErrValidation, parent.Code)
		}
		level = parent.Level + 1
		path = domain.ChildPath(parent, input.Code)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:         uc.idGen.Generate(),
		TenantID:   actor.TenantID,
		Code:       input.Code,
		Name:       input.Name,
		Type:       input.Type,
		Category:   input.Category,
		ParentCode: input.ParentCode,
		Level:      level,
		Path:       path,
		IsSummary:  input.IsSummary,
		IsActive:   true,
		Currency:   input.Currency,
		Audit: domain.AuditFields{
			CreatedAt: now,
			CreatedBy: actor.UserID,
			UpdatedAt: now,
			UpdatedBy: actor.UserID,
		},
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.writeAudit(ctx, actor, domain.AuditActionAccountCreate, account.ID, account)
	return account, nil
}

// GetAccount retrieves an account by code.
func (uc *AccountUseCase) GetAccount(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	return uc.accountRepo.GetByCode(ctx, tenantID, code)
}

// ListSubtree returns an account and all of its descendants.
func (uc *AccountUseCase) ListSubtree(ctx context.Context, tenantID, code string) ([]*domain.Account, error) {
	root, err := uc.accountRepo.GetByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	return uc.accountRepo.ListSubtree(ctx, tenantID, root.Path)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, tenantID string, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultPageSize
	}
	if input.Limit > MaxPageSize {
		input.Limit = MaxPageSize
	}
	return uc.accountRepo.List(ctx, tenantID, input.Limit, input.Offset)
}

// UpdateAccountInput represents input for updating an account. Empty fields
// keep their current value.
type UpdateAccountInput struct {
	Name     string
	Type     domain.AccountType
	Category string
}

// UpdateAccount changes an account's name, category or type. The type is
// frozen once the account has received postings, and a child account must
// keep its parent's type.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, actor domain.Actor, code string, input UpdateAccountInput) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByCode(ctx, actor.TenantID, code)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		if err := domain.ValidateName(input.Name); err != nil {
			return nil, err
		}
		account.Name = input.Name
	}
	if input.Category != "" {
		account.Category = input.Category
	}
	if input.Type != "" && input.Type != account.Type {
		if !domain.ValidAccountType(input.Type) {
			return nil, fmt.Errorf("%w: invalid account type %q", domain.ErrValidation, input.Type)
		}
		posted, err := uc.accountRepo.HasPostings(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		if posted {
			return nil, fmt.Errorf("%w: account %s has postings, its type cannot change", domain.ErrValidation, account.Code)
		}
		if account.ParentCode != "" {
			parent, err := uc.accountRepo.GetByCode(ctx, actor.TenantID, account.ParentCode)
			if err != nil {
				return nil, fmt.Errorf("parent account: %w", err)
			}
			if parent.Type != input.Type {
				return nil, fmt.Errorf("%w: account type %s does not match parent type %s", domain.ErrValidation, input.Type, parent.Type)
			}
		}
		children, err := uc.accountRepo.ListSubtree(ctx, actor.TenantID, account.Path)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if child.Code != account.Code {
				return nil, fmt.Errorf("%w: account %s has children, its type cannot change", domain.ErrValidation, account.Code)
			}
		}
		account.Type = input.Type
	}

	account.Audit.UpdatedAt = time.Now().UTC()
	account.Audit.UpdatedBy = actor.UserID
	if err := uc.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	uc.writeAudit(ctx, actor, domain.AuditActionAccountUpdate, account.ID, account)
	return account, nil
}

// DeactivateAccount marks an account inactive so it can no longer receive
// postings. History stays queryable; accounts with postings are never deleted.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, actor domain.Actor, code string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByCode(ctx, actor.TenantID, code)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return account, nil
	}

	children, err := uc.accountRepo.ListSubtree(ctx, actor.TenantID, account.Path)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if child.Code != account.Code && child.IsActive {
			return nil, fmt.Errorf("%w: account %s has active child %s", domain.ErrValidation, account.Code, child.Code)
		}
	}

	now := time.Now().UTC()
	if err := uc.accountRepo.SetActive(ctx, account.ID, false, now, actor.UserID); err != nil {
		return nil, err
	}
	account.IsActive = false
	account.Audit.UpdatedAt = now
	account.Audit.UpdatedBy = actor.UserID

	uc.writeAudit(ctx, actor, domain.AuditActionAccountDeactivate, account.ID, account)
	return account, nil
}

func (uc *AccountUseCase) writeAudit(ctx context.Context, actor domain.Actor, action domain.AuditAction, entityID string, state any) {
	if uc.auditRepo == nil {
		return
	}
	_ = uc.auditRepo.Create(ctx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		TenantID:     actor.TenantID,
		UserID:       actor.UserID,
		Action:       string(action),
		ResourceType: domain.AggregateTypeAccount,
		ResourceID:   entityID,
		AfterState:   domain.MarshalState(state),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
