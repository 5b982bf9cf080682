package pgsql

import (
	portsrepo "github.com/SscSPs/prima_nota/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every repository port to PostgreSQL. All of them
// share the pool and join the transaction carried by the context.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	movementRepo := newPgxMovementRepository(dbPool)

	return portsrepo.RepositoryProvider{
		TxManager:       &BaseRepository{Pool: dbPool},
		AccountRepo:     newPgxAccountRepository(dbPool),
		CategoryRepo:    newPgxCategoryRepository(dbPool),
		MovementRepo:    movementRepo,
		LinkRepo:        movementRepo,
		AllocationRepo:  movementRepo,
		DocumentRepo:    newPgxDocumentRepository(dbPool),
		PreferencesRepo: newPgxPreferencesRepository(dbPool),
	}
}
