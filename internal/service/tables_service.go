package service

import (
	"context"

	"devconnect/internal/repository"
)

type TablesService interface {
	GetCountTablesDB(ctx context.Context) (int, error)
	Health(ctx context.Context) error
}

type tablesService struct {
	tablesRepo repository.TablesRepository
}

func NewTablesService(tablesRepo repository.TablesRepository) TablesService {
	return &tablesService{tablesRepo: tablesRepo}
}

func (t *tablesService) GetCountTablesDB(ctx context.Context) (int, error) {
	return t.tablesRepo.CountTablesDB(ctx)
}

func (t *tablesService) Health(ctx context.Context) error {
	return t.tablesRepo.Ping(ctx)
}
