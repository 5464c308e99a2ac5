package module

import (
	"context"
)

// ModuleService exposes module metadata to the reporting layer.
type ModuleService interface {
	FieldNames(ctx context.Context, name string) ([]string, error)
}

type ModuleServiceImpl struct {
	repo ModuleRepository
}

func NewModuleService(repo ModuleRepository) ModuleService {
	return &ModuleServiceImpl{repo: repo}
}

func (s *ModuleServiceImpl) FieldNames(ctx context.Context, name string) ([]string, error) {
	m, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return m.FieldNames(), nil
}
