package repository

import (
	"context"
	"fmt"
	"strings"

	"order-app/internal/model"
	"order-app/internal/store"

	"github.com/rs/zerolog"
)

// accountSequence is the sequence key used for account ids.
const accountSequence = "users"

// accountRepository implements AccountRepository on top of the users store.
type accountRepository struct {
	users  *store.Collection[model.Account]
	seq    *store.Sequence
	logger zerolog.Logger
}

// NewAccountRepository creates a store-backed account repository.
func NewAccountRepository(backend store.Backend, seq *store.Sequence, logger zerolog.Logger) AccountRepository {
	return &accountRepository{
		users:  store.NewCollection[model.Account](backend, store.Users),
		seq:    seq,
		logger: logger.With().Str("repository", "account").Logger(),
	}
}

// List returns every account ordered by id.
func (r *accountRepository) List(ctx context.Context) ([]model.Account, error) {
	records, err := r.users.Load(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to load users")
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	ids, err := sortedIDs(records)
	if err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(ids))
	for _, id := range ids {
		a := records[key(id)]
		a.ID = id
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// GetByID returns the account or nil when it does not exist.
func (r *accountRepository) GetByID(ctx context.Context, id int) (*model.Account, error) {
	records, err := r.users.Load(ctx)
	if err != nil {
		r.logger.Error().Err(err).Int("user_id", id).Msg("failed to load users")
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	a, ok := records[key(id)]
	if !ok {
		r.logger.Debug().Int("user_id", id).Msg("user not found")
		return nil, nil
	}
	a.ID = id
	return &a, nil
}

// GetByEmail returns the account registered with email or nil.
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	accounts, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range accounts {
		if strings.EqualFold(accounts[i].Email, email) {
			return &accounts[i], nil
		}
	}
	return nil, nil
}

// Create stores account under a freshly allocated id.
func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	err := r.users.Update(ctx, func(records map[string]model.Account) error {
		for _, existing := range records {
			if strings.EqualFold(existing.Email, account.Email) {
				return model.ErrEmailTaken
			}
		}

		highest, err := maxKey(records)
		if err != nil {
			return err
		}
		id, err := r.seq.Next(ctx, accountSequence, highest)
		if err != nil {
			return err
		}
		account.ID = id
		if account.Orders == nil {
			account.Orders = []int{}
		}
		records[key(id)] = *account
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	r.logger.Debug().Int("user_id", account.ID).Str("role", string(account.Role)).Msg("account created")
	return nil
}

// Update applies fn to the stored account.
func (r *accountRepository) Update(ctx context.Context, id int, fn func(account *model.Account) error) (*model.Account, error) {
	var updated model.Account
	err := r.users.Update(ctx, func(records map[string]model.Account) error {
		a, ok := records[key(id)]
		if !ok {
			return model.ErrUserNotFound
		}
		a.ID = id
		if err := fn(&a); err != nil {
			return err
		}
		records[key(id)] = a
		updated = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", id, err)
	}
	return &updated, nil
}
