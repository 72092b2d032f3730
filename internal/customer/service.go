package customer

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	// DeleteCustomer removes the customer; invoices referencing them keep
	// existing with a nulled customer reference.
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	ListCustomers(ctx context.Context, search string) ([]*Customer, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	c := &Customer{
		Name:    params.Name,
		Email:   params.Email,
		Phone:   params.Phone,
		Address: params.Address,
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) Update(ctx context.Context, c *Customer) error {
	return s.repo.UpdateCustomer(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCustomer(ctx, id)
}

func (s *Service) List(ctx context.Context, search string) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx, search)
}
