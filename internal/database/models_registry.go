package database

import "github.com/pro-power/polishr-sub001/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Project{},
		&models.ProjectImage{},
		&models.ProfileView{},
		&models.ProjectClick{},
		&models.EmailCapture{},
		&models.PasswordResetToken{},
		&models.EmailVerificationToken{},
	}
}
