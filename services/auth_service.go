package services

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"clockwork-server/config"
	"clockwork-server/models"
	"clockwork-server/types"
)

// AuthService implements the identity collaborator: phone OTP issuance and
// verification, JWT session tokens, and first-touch user creation with the
// welcome credit grant. The lifecycle core never talks to it directly; it
// only trusts the (userID, role) the middleware extracts.
type AuthService struct {
	db      *gorm.DB
	credits *CreditService
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, credits *CreditService) *AuthService {
	return &AuthService{db: db, credits: credits}
}

// SendOTP generates a 6-digit code, stores its bcrypt hash with an expiry and
// returns nothing to the caller. The code is logged in place of an SMS
// gateway.
func (s *AuthService) SendOTP(phoneNumber string) error {
	if phoneNumber == "" {
		return fmt.Errorf("%w: phone number is required", ErrInvalidInput)
	}

	code, err := generateOTPCode()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	expiry := time.Duration(config.AppConfig.Phone.OTPExpiryMinutes) * time.Minute
	return s.db.Transaction(func(tx *gorm.DB) error {
		// One outstanding code per phone number.
		if err := tx.Where("phone_number = ?", phoneNumber).Delete(&models.OTPCode{}).Error; err != nil {
			return err
		}
		otp := models.OTPCode{
			PhoneNumber: phoneNumber,
			CodeHash:    string(hash),
			ExpiresAt:   time.Now().Add(expiry),
		}
		if err := tx.Create(&otp).Error; err != nil {
			return err
		}
		log.Printf("📱 OTP for %s: %s", phoneNumber, code)
		return nil
	})
}

// AuthResult is returned on successful OTP verification.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// VerifyOTP validates and consumes the code, creating the user on first
// successful authentication (with the welcome bonus recorded in the ledger so
// the replay invariant holds from the very first entry), then issues a JWT.
func (s *AuthService) VerifyOTP(phoneNumber, code string) (*AuthResult, error) {
	var otp models.OTPCode
	err := s.db.Where("phone_number = ?", phoneNumber).
		Order("created_at DESC").First(&otp).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: invalid OTP", ErrPermissionDenied)
	}
	if err != nil {
		return nil, err
	}
	if otp.IsExpired() {
		return nil, fmt.Errorf("%w: OTP expired", ErrPermissionDenied)
	}
	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		return nil, fmt.Errorf("%w: invalid OTP", ErrPermissionDenied)
	}

	var user models.User
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Delete(&otp).Error; txErr != nil {
			return txErr
		}

		txErr := tx.Where("phone_number = ?", phoneNumber).First(&user).Error
		if txErr == gorm.ErrRecordNotFound {
			initial := config.AppConfig.Credits.InitialCredits
			user = models.User{
				PhoneNumber: phoneNumber,
				Role:        models.RoleUser,
				CreditScore: TrustInitialScore,
			}
			if txErr := tx.Create(&user).Error; txErr != nil {
				return txErr
			}
			if _, txErr := s.credits.CreditTx(tx, user.ID, models.TransactionBonus, initial,
				fmt.Sprintf("Welcome bonus - %d credits!", initial), nil); txErr != nil {
				return txErr
			}
			return tx.First(&user, user.ID).Error
		}
		return txErr
	})
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account deactivated", ErrPermissionDenied)
	}

	token, expiresAt, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	session := models.AuthSession{UserID: user.ID, Token: token, ExpiresAt: expiresAt}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user}, nil
}

// issueToken signs a JWT for the user.
func (s *AuthService) issueToken(userID uint) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(config.AppConfig.JWT.ExpiryHours) * time.Hour)
	claims := &types.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "clockwork-server",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.AppConfig.JWT.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// SetRole switches the user between USER and WORKER. Switching to WORKER
// get-or-creates the worker profile.
func (s *AuthService) SetRole(userID uint, role models.UserRole) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleWorker {
		return nil, fmt.Errorf("%w: role %q", ErrInvalidInput, role)
	}

	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.First(&user, userID).Error; txErr != nil {
			return txErr
		}
		user.Role = role
		if txErr := tx.Save(&user).Error; txErr != nil {
			return txErr
		}

		if role == models.RoleWorker {
			var profile models.WorkerProfile
			txErr := tx.Where("worker_id = ?", userID).First(&profile).Error
			if txErr == gorm.ErrRecordNotFound {
				profile = models.WorkerProfile{WorkerID: userID, Rating: 5}
				return tx.Create(&profile).Error
			}
			return txErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the user's editable fields. Phone numbers stay
// unique.
func (s *AuthService) UpdateProfile(userID uint, name, phoneNumber, address *string) (*models.User, error) {
	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.First(&user, userID).Error; txErr != nil {
			return txErr
		}

		if name != nil {
			user.Name = *name
		}
		if address != nil {
			user.Address = *address
		}
		if phoneNumber != nil && *phoneNumber != user.PhoneNumber {
			var existing models.User
			txErr := tx.Where("phone_number = ?", *phoneNumber).First(&existing).Error
			if txErr == nil {
				return fmt.Errorf("%w: phone number already in use", ErrInvalidInput)
			}
			if txErr != gorm.ErrRecordNotFound {
				return txErr
			}
			user.PhoneNumber = *phoneNumber
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CleanupExpiredSessions removes expired OTP codes and sessions; run
// periodically by the maintenance job.
func (s *AuthService) CleanupExpiredSessions() error {
	now := time.Now()
	if err := s.db.Where("expires_at <= ?", now).Delete(&models.OTPCode{}).Error; err != nil {
		return err
	}
	return s.db.Where("expires_at <= ?", now).Delete(&models.AuthSession{}).Error
}

// generateOTPCode returns a cryptographically random 6-digit code.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
