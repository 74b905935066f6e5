package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CustomerAddressRequest struct {
	AddressType string `json:"address_type" binding:"required,oneof=BILLING SHIPPING"`
	FullAddress string `json:"full_address" binding:"required"`
	IsDefault   bool   `json:"is_default"`
}

type SaveCustomerRequest struct {
	Name          string                   `json:"name" binding:"required"`
	TaxCode       string                   `json:"tax_code"`
	ContactPerson string                   `json:"contact_person"`
	Phone         string                   `json:"phone"`
	Email         string                   `json:"email" binding:"omitempty,email"`
	Addresses     []CustomerAddressRequest `json:"addresses"`
}

type CustomerResponse struct {
	ID            string                    `json:"id"`
	CompanyID     string                    `json:"company_id"`
	Name          string                    `json:"name"`
	TaxCode       string                    `json:"tax_code"`
	ContactPerson string                    `json:"contact_person"`
	Phone         string                    `json:"phone"`
	Email         string                    `json:"email"`
	IsActive      bool                      `json:"is_active"`
	Addresses     []CustomerAddressResponse `json:"addresses"`
	CreatedAt     string                    `json:"created_at"`
}

type CustomerAddressResponse struct {
	ID          string `json:"id"`
	AddressType string `json:"address_type"`
	FullAddress string `json:"full_address"`
	IsDefault   bool   `json:"is_default"`
}

// --- Interface ---

type CustomerService interface {
	ListCustomers(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]CustomerResponse, int64, error)
	GetCustomer(ctx context.Context, id string) (*CustomerResponse, error)
	CreateCustomer(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, req SaveCustomerRequest) (*CustomerResponse, error)
	UpdateCustomer(ctx context.Context, id string, req SaveCustomerRequest) (*CustomerResponse, error)
	DeleteCustomer(ctx context.Context, id string) error
}

type customerService struct {
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

func (s *customerService) ListCustomers(ctx context.Context, companyID uuid.UUID, search string, page, limit int) ([]CustomerResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	customers, total, err := s.customerRepo.ListByCompany(ctx, companyID, search, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		res = append(res, toCustomerResponse(&customers[i]))
	}
	return res, total, nil
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, errors.New("customer not found")
	}
	resp := toCustomerResponse(customer)
	return &resp, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, companyID uuid.UUID, actorID *uuid.UUID, req SaveCustomerRequest) (*CustomerResponse, error) {
	customer := &model.Customer{
		CompanyID:     companyID,
		Name:          req.Name,
		TaxCode:       req.TaxCode,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		IsActive:      true,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.customerRepo.Create(txCtx, customer); err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}
		if len(req.Addresses) > 0 {
			if err := s.customerRepo.ReplaceAddresses(txCtx, customer.ID, toAddressModels(req.Addresses)); err != nil {
				return fmt.Errorf("failed to save addresses: %w", err)
			}
		}
		_ = s.auditRepo.Create(txCtx, &model.AuditLog{
			CompanyID:  &companyID,
			UserID:     actorID,
			Action:     model.ActionCreateCustomer,
			EntityID:   customer.ID.String(),
			EntityName: customer.Name,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetCustomer(ctx, customer.ID.String())
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, req SaveCustomerRequest) (*CustomerResponse, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, errors.New("customer not found")
	}

	customer.Name = req.Name
	customer.TaxCode = req.TaxCode
	customer.ContactPerson = req.ContactPerson
	customer.Phone = req.Phone
	customer.Email = req.Email

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.customerRepo.Update(txCtx, customer); err != nil {
			return fmt.Errorf("failed to update customer: %w", err)
		}
		if req.Addresses != nil {
			if err := s.customerRepo.ReplaceAddresses(txCtx, customer.ID, toAddressModels(req.Addresses)); err != nil {
				return fmt.Errorf("failed to save addresses: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetCustomer(ctx, id)
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid customer id: %w", err)
	}
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return errors.New("customer not found")
	}
	return s.customerRepo.Delete(ctx, customerID)
}

// --- Helpers ---

func toAddressModels(reqs []CustomerAddressRequest) []model.CustomerAddress {
	addresses := make([]model.CustomerAddress, 0, len(reqs))
	for _, a := range reqs {
		addresses = append(addresses, model.CustomerAddress{
			AddressType: a.AddressType,
			FullAddress: a.FullAddress,
			IsDefault:   a.IsDefault,
		})
	}
	return addresses
}

func toCustomerResponse(c *model.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:            c.ID.String(),
		CompanyID:     c.CompanyID.String(),
		Name:          c.Name,
		TaxCode:       c.TaxCode,
		ContactPerson: c.ContactPerson,
		Phone:         c.Phone,
		Email:         c.Email,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	for _, a := range c.Addresses {
		resp.Addresses = append(resp.Addresses, CustomerAddressResponse{
			ID:          a.ID.String(),
			AddressType: a.AddressType,
			FullAddress: a.FullAddress,
			IsDefault:   a.IsDefault,
		})
	}
	return resp
}
