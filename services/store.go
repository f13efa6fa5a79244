package services

import (
	"context"
	"errors"

	"firstbites/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistent side of a session. Every call touches a single row
// or a single user's rows.
type Store interface {
	ListFoods(ctx context.Context) ([]models.Food, error)
	UpsertFoods(ctx context.Context, foods []models.Food) error

	GetUser(ctx context.Context, userID uint) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteAccount(ctx context.Context, userID uint) error

	ListFoodStates(ctx context.Context, userID uint) ([]models.FoodState, error)
	SaveFoodState(ctx context.Context, st *models.FoodState) error
	DeleteFoodState(ctx context.Context, userID uint, stateID string) error

	ListLogs(ctx context.Context, userID uint) ([]models.FoodLog, error)
	CreateLog(ctx context.Context, l *models.FoodLog) error
	UpdateLog(ctx context.Context, l *models.FoodLog) error
	DeleteLog(ctx context.Context, userID uint, logID string) error
}

// GormStore implements Store on any gorm dialect.
type GormStore struct{ db *gorm.DB }

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) ListFoods(ctx context.Context) ([]models.Food, error) {
	var foods []models.Food
	err := s.db.WithContext(ctx).Order("category ASC, name ASC").Find(&foods).Error
	return foods, err
}

// UpsertFoods inserts catalog rows by id, overwriting existing ones. Catalog
// ids are stable so logged states keep pointing at the same food.
func (s *GormStore) UpsertFoods(ctx context.Context, foods []models.Food) error {
	if len(foods) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "category", "emoji", "image_url", "is_allergen",
			"allergen_family", "serving_guide", "choking_hazard_level",
		}),
	}).Create(&foods).Error
}

func (s *GormStore) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", userID)
		}
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *GormStore) SaveUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Save(u).Error
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}

// DeleteAccount removes the user and everything owned by it.
func (s *GormStore) DeleteAccount(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := []any{
			&models.FoodLog{},
			&models.FoodState{},
			&models.UserDevice{},
			&models.Notification{},
		}
		for _, m := range owned {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.User{}, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("user", userID)
		}
		return nil
	})
}

func (s *GormStore) ListFoodStates(ctx context.Context, userID uint) ([]models.FoodState, error) {
	var states []models.FoodState
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&states).Error
	return states, err
}

// SaveFoodState upserts on (user, food). When the pair already has a row the
// row keeps its id and st.ID is set to it.
func (s *GormStore) SaveFoodState(ctx context.Context, st *models.FoodState) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "food_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "exposure_count", "last_eaten", "updated_at",
			}),
		}).Create(st).Error
		if err != nil {
			return err
		}
		var row models.FoodState
		if err := tx.Select("id").
			Where("user_id = ? AND food_id = ?", st.UserID, st.FoodID).
			First(&row).Error; err != nil {
			return err
		}
		st.ID = row.ID
		return nil
	})
}

func (s *GormStore) DeleteFoodState(ctx context.Context, userID uint, stateID string) error {
	return s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", stateID, userID).
		Delete(&models.FoodState{}).Error
}

func (s *GormStore) ListLogs(ctx context.Context, userID uint) ([]models.FoodLog, error) {
	var logs []models.FoodLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

func (s *GormStore) CreateLog(ctx context.Context, l *models.FoodLog) error {
	return s.db.WithContext(ctx).Create(l).Error
}

func (s *GormStore) UpdateLog(ctx context.Context, l *models.FoodLog) error {
	res := s.db.WithContext(ctx).Model(&models.FoodLog{}).
		Where("id = ? AND user_id = ?", l.ID, l.UserID).
		Updates(map[string]any{
			"reaction_severity": l.ReactionSeverity,
			"notes":             l.Notes,
			"created_at":        l.CreatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("log", l.ID)
	}
	return nil
}

func (s *GormStore) DeleteLog(ctx context.Context, userID uint, logID string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", logID, userID).
		Delete(&models.FoodLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound("log", logID)
	}
	return nil
}
