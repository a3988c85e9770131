package cataloghandlers

import (
	"context"

	catalogservice "github.com/Black-And-White-Club/racepack/app/modules/catalog/application"
)

type FakeCatalogService struct {
	ListCategoriesFunc      func(ctx context.Context) ([]catalogservice.CategoryView, error)
	GetCategoryFunc         func(ctx context.Context, id int64) (catalogservice.Category, error)
	UpsertCategoryFunc      func(ctx context.Context, category catalogservice.Category) (catalogservice.Category, error)
	ListJerseysFunc         func(ctx context.Context) ([]catalogservice.Jersey, error)
	RenderCapacityChartFunc func(ctx context.Context) ([]byte, error)
}

func (f *FakeCatalogService) ListCategories(ctx context.Context) ([]catalogservice.CategoryView, error) {
	if f.ListCategoriesFunc != nil {
		return f.ListCategoriesFunc(ctx)
	}
	return nil, nil
}

func (f *FakeCatalogService) GetCategory(ctx context.Context, id int64) (catalogservice.Category, error) {
	if f.GetCategoryFunc != nil {
		return f.GetCategoryFunc(ctx, id)
	}
	return catalogservice.Category{}, nil
}

func (f *FakeCatalogService) UpsertCategory(ctx context.Context, category catalogservice.Category) (catalogservice.Category, error) {
	if f.UpsertCategoryFunc != nil {
		return f.UpsertCategoryFunc(ctx, category)
	}
	return category, nil
}

func (f *FakeCatalogService) ListJerseys(ctx context.Context) ([]catalogservice.Jersey, error) {
	if f.ListJerseysFunc != nil {
		return f.ListJerseysFunc(ctx)
	}
	return nil, nil
}

func (f *FakeCatalogService) RenderCapacityChart(ctx context.Context) ([]byte, error) {
	if f.RenderCapacityChartFunc != nil {
		return f.RenderCapacityChartFunc(ctx)
	}
	return nil, nil
}

var _ catalogservice.Service = (*FakeCatalogService)(nil)
