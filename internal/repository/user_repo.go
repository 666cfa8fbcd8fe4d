package repository

import (
	"context"
	"strconv"

	"github.com/arenaworks/arena-api/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User, profile *model.UserProfile, stats *model.UserStats) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindLikeUsername(ctx context.Context, fragment string, limit int) ([]model.User, error)
	FindWithPaging(ctx context.Context, first, after int) ([]model.User, error)
	Save(ctx context.Context, user *model.User) error
	DeleteWithDependents(ctx context.Context, user *model.User) error

	CreateActivity(ctx context.Context, activity *model.Activity) error
	FindActivity(ctx context.Context, userID uint, first, after int) ([]model.Activity, error)

	CreatePasswordReset(ctx context.Context, reset *model.PasswordReset) error
	FindPasswordReset(ctx context.Context, token string) (*model.PasswordReset, error)
	DeletePasswordReset(ctx context.Context, id uint) error
	CreateEmailVerification(ctx context.Context, verification *model.EmailVerification) error
	FindEmailVerification(ctx context.Context, token string) (*model.EmailVerification, error)
	DeleteEmailVerification(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User, profile *model.UserProfile, stats *model.UserStats) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		if profile != nil {
			profile.UserID = user.ID
			if err := tx.Create(profile).Error; err != nil {
				return err
			}
		}

		if stats != nil {
			stats.UserID = user.ID
			if err := tx.Create(stats).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("LinkedAccounts").
		First(&user, id).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("LinkedAccounts").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Preload("LinkedAccounts").
		Where("email = ?", email).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindLikeUsername(ctx context.Context, fragment string, limit int) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).
		Preload("LinkedAccounts").
		Where("username ILIKE ?", "%"+fragment+"%").
		Order("username ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) FindWithPaging(ctx context.Context, first, after int) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).
		Preload("LinkedAccounts").
		Order("updated_at DESC, id ASC").
		Offset(after).
		Limit(first).
		Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// DeleteWithDependents removes a user and every row referencing it inside
// one transaction. Historical games keep their roster shape: the removed
// player's slot is overwritten with the deleted-user sentinel instead of
// being dropped, so team balance stays intact for old records. The user
// row itself goes last to keep foreign keys valid throughout.
func (r *userRepository) DeleteWithDependents(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dependents := []interface{}{
			&model.Activity{},
			&model.UserProfile{},
			&model.EmailOptIn{},
			&model.UserStats{},
			&model.UserGameStats{},
			&model.LinkedAccount{},
			&model.PasswordReset{},
			&model.EmailVerification{},
			&model.GameApplication{},
		}
		for _, entity := range dependents {
			if err := tx.Where("user_id = ?", user.ID).Delete(entity).Error; err != nil {
				return err
			}
		}

		key := strconv.FormatUint(uint64(user.ID), 10)
		var games []model.Game
		if err := tx.
			Where(datatypes.JSONQuery("storage").HasKey("players", key)).
			Find(&games).Error; err != nil {
			return err
		}

		for i := range games {
			storage, err := games[i].DecodeStorage()
			if err != nil {
				return err
			}
			slot, ok := storage.Players[key]
			if !ok {
				continue
			}
			storage.Players[key] = model.StoragePlayer{
				ID:       0,
				Team:     slot.Team,
				Username: model.DeletedPlayerName,
			}
			if err := games[i].EncodeStorage(storage); err != nil {
				return err
			}
			if err := tx.Save(&games[i]).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&model.User{}, user.ID).Error
	})
}

func (r *userRepository) CreateActivity(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *userRepository) FindActivity(ctx context.Context, userID uint, first, after int) ([]model.Activity, error) {
	var activity []model.Activity
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Offset(after).
		Limit(first).
		Find(&activity).Error; err != nil {
		return nil, err
	}

	return activity, nil
}

func (r *userRepository) CreatePasswordReset(ctx context.Context, reset *model.PasswordReset) error {
	return r.db.WithContext(ctx).Create(reset).Error
}

func (r *userRepository) FindPasswordReset(ctx context.Context, token string) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&reset).Error; err != nil {
		return nil, err
	}

	return &reset, nil
}

func (r *userRepository) DeletePasswordReset(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.PasswordReset{}, id).Error
}

func (r *userRepository) CreateEmailVerification(ctx context.Context, verification *model.EmailVerification) error {
	return r.db.WithContext(ctx).Create(verification).Error
}

func (r *userRepository) FindEmailVerification(ctx context.Context, token string) (*model.EmailVerification, error) {
	var verification model.EmailVerification
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&verification).Error; err != nil {
		return nil, err
	}

	return &verification, nil
}

func (r *userRepository) DeleteEmailVerification(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.EmailVerification{}, id).Error
}
