package service

import (
	"github.com/ctopbusca/ctop-busca/address"
	"github.com/ctopbusca/ctop-busca/config"
	"github.com/ctopbusca/ctop-busca/database/repository"
	"github.com/ctopbusca/ctop-busca/geocode"

	"gorm.io/gorm"
)

// Services are the services of one panel instance, built from its
// configuration. db must be open; it always holds the geocode cache.
type Services struct {
	Credentials  *CredentialService
	AccessLog    *AccessLogService
	Auth         *AuthService
	Search       *SearchService
	Resolver     *geocode.Resolver
	GeocodeCache *repository.GormGeocodeCache
}

func NewServices(cfg *config.Config, db *gorm.DB) *Services {
	var (
		users     repository.UserRepository
		accessLog repository.AccessLogRepository
	)
	if cfg.Storage.IsSQLite() {
		users = repository.NewGormUserRepository(db)
		accessLog = repository.NewGormAccessLogRepository(db)
	} else {
		users = repository.NewCSVUserRepository(cfg.Storage.CSV.UsersPath)
		accessLog = repository.NewCSVAccessLogRepository(cfg.Storage.CSV.AccessLogPath)
	}

	geo := cfg.Geocoder
	cache := repository.NewGormGeocodeCache(db, geo.NegativeCacheTTL())
	resolver := geocode.NewResolver(
		geocode.NewNominatim(geo.Endpoint, geo.UserAgent, geo.RequestTimeout()),
		cache,
		geocode.Options{Interval: geo.Interval(), Country: geo.Country},
	)

	s := &Services{
		Credentials:  NewCredentialService(users),
		AccessLog:    NewAccessLogService(accessLog),
		Resolver:     resolver,
		GeocodeCache: cache,
	}
	s.Auth = NewAuthService(s.Credentials, s.AccessLog)
	s.Search = NewSearchService(address.NewCatalog(cfg.DatasetPath), resolver)
	return s
}
