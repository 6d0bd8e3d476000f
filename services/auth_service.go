package services

import (
	"errors"

	"nomify/config"
	"nomify/models"
	"nomify/utils"
)

func RegisterUser(email, password, fullName string) error {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	user := models.User{
		Email:    email,
		Password: hashedPassword,
		FullName: fullName,
		Disabled: false,
	}

	result := config.DB.Create(&user)
	return result.Error
}

func AuthenticateUser(email, password string) (*models.User, error) {
	var user models.User
	result := config.DB.Where("email = ? AND disabled = ?", email, false).First(&user)
	if result.Error != nil {
		return nil, errors.New("user not found or disabled")
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, errors.New("incorrect password")
	}

	return &user, nil
}

func FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	result := config.DB.First(&user, "email = ?", email)
	if result.Error != nil {
		return nil, errors.New("user not found")
	}
	return &user, nil
}

// StartPasswordReset stores a one-time token on the user and emails it.
func StartPasswordReset(email string) error {
	user, err := FindUserByEmail(email)
	if err != nil {
		return err
	}
	token := utils.GenerateRandomToken(8)
	user.ResetToken = token
	if err := config.DB.Save(user).Error; err != nil {
		return err
	}
	return utils.SendResetEmail(user.Email, token)
}

// CompletePasswordReset swaps the password if the token matches.
func CompletePasswordReset(email, token, newPassword string) error {
	user, err := FindUserByEmail(email)
	if err != nil {
		return err
	}
	if user.ResetToken == "" || user.ResetToken != token {
		return errors.New("invalid reset token")
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.ResetToken = ""
	return config.DB.Save(user).Error
}
