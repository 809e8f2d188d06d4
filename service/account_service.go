// file: service/account_service.go

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"
	"time"
)

// AccountService serves account read paths. Listings go through a
// cache-aside Redis layer keyed per user; the LedgerService invalidates
// the same keys whenever it mutates a balance.
type AccountService struct {
	repo  repository.IAccountRepository
	cache ICacheClient
}

// NewAccountService creates the account read service. cache may be nil,
// in which case every listing hits the database.
func NewAccountService(repo repository.IAccountRepository, cache ICacheClient) *AccountService {
	return &AccountService{
		repo:  repo,
		cache: cache,
	}
}

// ListAccountsForUser lists accounts for a specific user, utilizing a
// cache-aside strategy.
func (s *AccountService) ListAccountsForUser(ctx context.Context, userID int) ([]*model.Account, error) {
	cacheKey := fmt.Sprintf("accounts:%d", userID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var accounts []*model.Account
			if err := json.Unmarshal([]byte(cached), &accounts); err == nil {
				return accounts, nil
			}
		}
	}

	accounts, err := s.repo.GetAccountsByUserID(userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(accounts); err == nil {
			s.cache.Set(ctx, cacheKey, data, 10*time.Minute)
		}
	}

	return accounts, nil
}
