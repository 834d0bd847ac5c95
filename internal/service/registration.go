package service

import (
	"context"
	"fmt"
	"log/slog"

	"wallet_ledger/internal/custom_err"
	"wallet_ledger/internal/models"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// RegisterUser создает пользователя и его кошелек в одной транзакции.
func (s *WalletService) RegisterUser(ctx context.Context, req models.RegisterUserRequest) (*models.RegisteredUser, error) {
	const op = "service.RegisterUser"

	if err := models.Validate(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	emailTaken, phoneTaken, err := s.repos.Users.ContactsTaken(ctx, req.Email, req.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	switch {
	case emailTaken:
		return nil, fmt.Errorf("%s: %w: email уже зарегистрирован", op, custom_err.ErrConflict)
	case phoneTaken:
		return nil, fmt.Errorf("%s: %w: телефон уже зарегистрирован", op, custom_err.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка хеширования пароля: %w: %w", op, custom_err.ErrInternal, err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(hash),
	}
	var wallet *models.Wallet
	err = runInTx(ctx, s.txManager, s.opts.LockTimeout, func(tx pgx.Tx) error {
		if err := s.repos.Users.CreateTx(ctx, tx, user); err != nil {
			return err
		}
		var err error
		wallet, err = s.CreateInTransaction(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("пользователь зарегистрирован",
		slog.String("op", op),
		slog.String("user_id", user.ID),
		slog.String("wallet_id", wallet.ID),
	)
	return &models.RegisteredUser{User: *user, WalletID: wallet.ID}, nil
}
