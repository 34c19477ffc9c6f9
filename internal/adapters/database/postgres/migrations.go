package postgres

import "github.com/fasevent/registrations/internal/domain/entity"

// Migrations is a list of all gorm migrations for the database.
var Migrations = []interface{}{
	&entity.Registration{},
	&entity.CategoryCost{},
	&entity.PaymentQR{},
}
