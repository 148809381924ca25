// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// Regenerate with `go generate ./test/mocks`.
package mocks

//go:generate mockgen -source=../../internal/core/ports/catalog.go -destination=catalog_api_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/orders.go -destination=order_api_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/reports.go -destination=reports_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/auth.go -destination=auth_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/events.go -destination=events_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/storage.go -destination=storage_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
