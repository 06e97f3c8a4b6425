package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/connectpp/student-network/internal/model"
	"github.com/connectpp/student-network/internal/repository"
	"github.com/connectpp/student-network/internal/token"
	"github.com/connectpp/student-network/internal/utils"
)

// UserDirectory is the read side of the user repository used by search.
type UserDirectory interface {
	FindByRegno(ctx context.Context, regno string) (model.User, error)
	FindByName(ctx context.Context, firstname, lastname string) (model.User, error)
	List(ctx context.Context) ([]model.UserSummary, error)
}

// SearchService finds users and hands out SearchAccessTokens that let the
// caller read the found user's profiles.
type SearchService struct {
	users   UserDirectory
	access  *token.AccessCodec
	timeout time.Duration
}

func NewSearchService(users UserDirectory, access *token.AccessCodec) *SearchService {
	return &SearchService{users: users, access: access, timeout: CallTimeout}
}

// SearchByFullname looks a user up by "firstname lastname". A single word
// matches on firstname alone; words after the second are ignored.
func (s *SearchService) SearchByFullname(ctx context.Context, fullname string) (string, error) {
	words := strings.Fields(fullname)
	if len(words) == 0 {
		return "", invalid(MsgInvalidCredentials)
	}
	last := ""
	if len(words) > 1 {
		last = words[1]
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	u, err := s.users.FindByName(ctx, words[0], last)
	return s.found(u, err, "search by fullname")
}

// SearchByRegno looks a user up by registration number.
func (s *SearchService) SearchByRegno(ctx context.Context, regno string) (string, error) {
	if !utils.IsValidRegno(regno) {
		return "", invalid(MsgInvalidCredentials)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	u, err := s.users.FindByRegno(ctx, regno)
	return s.found(u, err, "search by regno")
}

// ListUsers returns every user without password hashes.
func (s *SearchService) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, storage("list users", err)
	}
	return users, nil
}

// found issues the SearchAccessToken for u. The token embeds the user's
// identity only; the password hash never leaves the store.
func (s *SearchService) found(u model.User, err error, op string) (string, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", notFound(MsgUserNotFound)
		}
		return "", storage(op, err)
	}
	tok, err := s.access.Issue(token.Claims{
		UserID:    u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Regno:     u.Regno,
	}, token.SearchAccessToken)
	if err != nil {
		return "", storage(op+": issue token", err)
	}
	return tok, nil
}
