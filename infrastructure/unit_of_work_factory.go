package infrastructure

import (
	"skinvault/application"
	"skinvault/database"
	"skinvault/domain/interfaces"
	"skinvault/repository"
)

// UnitOfWorkFactory creates units of work whose events go to the bus after commit
type UnitOfWorkFactory struct {
	repositoryFactory *repository.UnitOfWorkFactory
	eventPublisher    interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new unit of work factory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repositoryFactory: repository.NewUnitOfWorkFactory(db),
		eventPublisher:    eventPublisher,
	}
}

// Create creates a new unit of work with its own transactional publisher
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return f.repositoryFactory.CreateWithPublisher(NewNATSTransactionalPublisher(f.eventPublisher))
}
