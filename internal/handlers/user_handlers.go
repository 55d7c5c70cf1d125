package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/ippcom/goodies-api/internal/auth"
	"github.com/ippcom/goodies-api/internal/models"
)

//
// --- Account Handlers ---
//

// RegisterUserInput is the body of POST /v1/register.
type RegisterUserInput struct {
	FullName string  `json:"fullName" binding:"required,notblank"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Company  *string `json:"company"`
}

// Register creates a customer account.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now()
	result, err := h.DB.ExecContext(c, `
		INSERT INTO users (role, email, password_hash, full_name, company_name, created_at, updated_at)
		VALUES ('customer', ?, ?, ?, ?, ?, ?)`,
		input.Email, password.Hash, input.FullName, input.Company, now, now)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	userID, err := result.LastInsertId()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read new account ID"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": models.User{
			ID:          userID,
			Role:        "customer",
			Email:       input.Email,
			FullName:    input.FullName,
			CompanyName: input.Company,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	})
}

// LoginInput is the body of POST /v1/login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a JWT.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var u models.User
	err := h.DB.QueryRowContext(c, `
		SELECT id, role, email, password_hash, full_name, company_name, created_at, updated_at
		FROM users
		WHERE email = ?`, input.Email).Scan(
		&u.ID, &u.Role, &u.Email, &u.PasswordHash, &u.FullName, &u.CompanyName, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up account"})
		return
	}

	password := models.Password{Hash: u.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify credentials"})
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateToken(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}
