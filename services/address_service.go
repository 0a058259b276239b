package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

var (
	ErrDuplicateAddress = utils.ConflictError("Address already exists")
	// ErrDefaultAddressRace is returned when a concurrent request claimed the
	// default slot first and the one-default index rejected this write.
	ErrDefaultAddressRace = utils.ConflictError("Default address was changed by another request, retry")
)

// AddressInput carries the editable fields of an address.
type AddressInput struct {
	Label      string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Phone      string
	IsDefault  bool
}

func (in AddressInput) normalized() AddressInput {
	in.Label = strings.TrimSpace(in.Label)
	in.Line1 = strings.TrimSpace(in.Line1)
	in.Line2 = strings.TrimSpace(in.Line2)
	in.City = strings.TrimSpace(in.City)
	in.PostalCode = strings.TrimSpace(in.PostalCode)
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

// AddressService manages a user's addresses. At most one address per user is
// default; every write that sets a default clears the others in the same
// transaction.
type AddressService struct {
	db *gorm.DB
}

func NewAddressService(db *gorm.DB) *AddressService {
	return &AddressService{db: db}
}

// List returns the user's addresses, default first.
func (s *AddressService) List(ctx context.Context, userID uint) ([]models.Address, error) {
	var addresses []models.Address
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default desc, id asc").
		Find(&addresses).Error
	if err != nil {
		return nil, utils.InternalError(err)
	}
	return addresses, nil
}

// Create adds an address. The user's first address becomes default
// regardless of in.IsDefault.
func (s *AddressService) Create(ctx context.Context, userID uint, in AddressInput) (*models.Address, error) {
	in = in.normalized()
	if in.Line1 == "" || in.City == "" {
		return nil, utils.ValidationError("line1 and city are required")
	}

	var address models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkDuplicate(tx, userID, 0, in); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return utils.InternalError(err)
		}
		isDefault := in.IsDefault || count == 0

		if isDefault {
			if err := clearDefaults(tx, userID); err != nil {
				return err
			}
		}

		address = models.Address{
			UserID:     userID,
			Label:      in.Label,
			Line1:      in.Line1,
			Line2:      in.Line2,
			City:       in.City,
			PostalCode: in.PostalCode,
			Phone:      in.Phone,
			IsDefault:  isDefault,
		}
		if err := tx.Create(&address).Error; err != nil {
			return addressWriteError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"user_id":    userID,
		"address_id": address.ID,
		"default":    address.IsDefault,
	}).Info("address created")
	return &address, nil
}

// Update replaces the editable fields. Passing IsDefault=false never unsets
// an existing default; use SetDefault on another address for that.
func (s *AddressService) Update(ctx context.Context, userID, addressID uint, in AddressInput) (*models.Address, error) {
	in = in.normalized()
	if in.Line1 == "" || in.City == "" {
		return nil, utils.ValidationError("line1 and city are required")
	}

	var address models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := ownedAddress(tx, userID, addressID)
		if err != nil {
			return err
		}
		if err := checkDuplicate(tx, userID, addressID, in); err != nil {
			return err
		}

		isDefault := found.IsDefault || in.IsDefault
		if in.IsDefault && !found.IsDefault {
			if err := clearDefaults(tx, userID); err != nil {
				return err
			}
		}

		if err := tx.Model(found).Updates(map[string]interface{}{
			"label":       in.Label,
			"line1":       in.Line1,
			"line2":       in.Line2,
			"city":        in.City,
			"postal_code": in.PostalCode,
			"phone":       in.Phone,
			"is_default":  isDefault,
		}).Error; err != nil {
			return addressWriteError(err)
		}
		return tx.First(&address, addressID).Error
	})
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// Delete removes an address. When it was the default, the oldest remaining
// address takes over.
func (s *AddressService) Delete(ctx context.Context, userID, addressID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := ownedAddress(tx, userID, addressID)
		if err != nil {
			return err
		}
		if err := tx.Delete(found).Error; err != nil {
			return utils.InternalError(err)
		}
		if !found.IsDefault {
			return nil
		}

		var next models.Address
		err = tx.Where("user_id = ?", userID).Order("id asc").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return utils.InternalError(err)
		}
		if err := tx.Model(&next).Update("is_default", true).Error; err != nil {
			return utils.InternalError(err)
		}
		return nil
	})
}

// SetDefault makes addressID the user's only default address.
func (s *AddressService) SetDefault(ctx context.Context, userID, addressID uint) (*models.Address, error) {
	var address models.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := ownedAddress(tx, userID, addressID)
		if err != nil {
			return err
		}
		if found.IsDefault {
			address = *found
			return nil
		}
		if err := clearDefaults(tx, userID); err != nil {
			return err
		}
		if err := tx.Model(found).Update("is_default", true).Error; err != nil {
			return addressWriteError(err)
		}
		found.IsDefault = true
		address = *found
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"user_id":    userID,
		"address_id": addressID,
	}).Info("default address changed")
	return &address, nil
}

func addressWriteError(err error) error {
	if utils.IsUniqueViolation(err) {
		utils.InfoLogger.Debugf("default address write rejected: %v", err)
		return ErrDefaultAddressRace
	}
	return utils.InternalError(err)
}

func ownedAddress(tx *gorm.DB, userID, addressID uint) (*models.Address, error) {
	var address models.Address
	if err := tx.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, utils.InternalError(err)
	}
	return &address, nil
}

func clearDefaults(tx *gorm.DB, userID uint) error {
	err := tx.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
	if err != nil {
		return utils.InternalError(err)
	}
	return nil
}

// checkDuplicate rejects a second address of the user with the same line1,
// city and postal code, ignoring case. excludeID skips the row being edited.
func checkDuplicate(tx *gorm.DB, userID, excludeID uint, in AddressInput) error {
	var count int64
	q := tx.Model(&models.Address{}).
		Where("user_id = ? AND LOWER(line1) = ? AND LOWER(city) = ? AND LOWER(postal_code) = ?",
			userID, strings.ToLower(in.Line1), strings.ToLower(in.City), strings.ToLower(in.PostalCode))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return utils.InternalError(err)
	}
	if count > 0 {
		return ErrDuplicateAddress
	}
	return nil
}
