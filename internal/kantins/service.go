package kantins

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/webcraft-id/kantinku-backend/pkg/db/models"
	pkgerrors "github.com/webcraft-id/kantinku-backend/pkg/errors"
)

// Service defines the behavior needed by the kantins controller.
type Service interface {
	ListKantins(ctx context.Context) ([]KantinDTO, error)
	GetKantin(ctx context.Context, id uint) (*KantinDetailDTO, error)
}

type kantinRepository interface {
	List(ctx context.Context) ([]models.Kantin, error)
	FindByID(ctx context.Context, id uint) (*models.Kantin, error)
}

type service struct {
	repo kantinRepository
}

// NewService constructs a kantins service with the provided repository.
func NewService(repo kantinRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("kantin repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListKantins(ctx context.Context) ([]KantinDTO, error) {
	kantins, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list kantins")
	}

	out := make([]KantinDTO, 0, len(kantins))
	for i := range kantins {
		out = append(out, fromModel(&kantins[i]))
	}
	return out, nil
}

func (s *service) GetKantin(ctx context.Context, id uint) (*KantinDetailDTO, error) {
	kantin, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "kantin not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load kantin")
	}

	detail := &KantinDetailDTO{
		KantinDTO: fromModel(kantin),
		MenuItems: make([]MenuItemDTO, 0, len(kantin.MenuItems)),
	}
	for _, item := range kantin.MenuItems {
		detail.MenuItems = append(detail.MenuItems, menuItemFromModel(item))
	}
	return detail, nil
}
