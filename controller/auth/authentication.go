package auth

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"projectdesk/apperror"
	"projectdesk/controller"
	"projectdesk/dto"
	"projectdesk/middleware"
	"projectdesk/model"
	"projectdesk/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenName = "auth_token"

var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return h
})

func AuthController(router *gin.RouterGroup, deps *controller.Deps, limiter *middleware.RateLimiter) {
	router.POST("/register", limiter.Middleware(), func(c *gin.Context) {
		Register(c, deps.DB, deps.Tokens)
	})
	router.POST("/login", limiter.Middleware(), func(c *gin.Context) {
		Login(c, deps.DB, deps.Tokens)
	})
	router.POST("/logout", middleware.AccessTokenMiddleware(deps.Tokens), func(c *gin.Context) {
		Logout(c, deps.Tokens)
	})
}

func Register(c *gin.Context, db *gorm.DB, tokens *services.TokenService) {
	var req dto.RegisterRequest
	if !controller.BindJSON(c, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	if err := CheckUnique(c, db, req.Username, req.Email, 0); err != nil {
		apperror.Respond(c, err)
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	user := model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		Role:     req.Role,
	}
	if err := db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			apperror.Respond(c, apperror.Invalid("email", "The email has already been taken."))
			return
		}
		apperror.Respond(c, err)
		return
	}

	token, err := tokens.Issue(c.Request.Context(), &user, tokenName)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.AuthResponse{AccessToken: token, TokenType: "Bearer", User: user})
}

func Login(c *gin.Context, db *gorm.DB, tokens *services.TokenService) {
	var req dto.LoginRequest
	if !controller.BindJSON(c, &req) {
		return
	}

	var user model.User
	err := db.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		apperror.Respond(c, err)
		return
	}

	hash := []byte(user.Password)
	if user.ID == 0 {
		hash = dummyHash()
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil || user.ID == 0 {
		apperror.Respond(c, apperror.Invalid("email", "Invalid credentials"))
		return
	}

	token, err := tokens.Issue(c.Request.Context(), &user, tokenName)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{AccessToken: token, TokenType: "Bearer", User: user})
}

// Logout revokes only the token that authenticated this request.
func Logout(c *gin.Context, tokens *services.TokenService) {
	p := middleware.CurrentPrincipal(c)
	if err := tokens.Revoke(c.Request.Context(), p.TokenID); err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// CheckUnique reports taken usernames or emails, ignoring the row exceptID.
func CheckUnique(c *gin.Context, db *gorm.DB, username, email string, exceptID uint) error {
	fields := map[string][]string{}
	check := func(column, value, message string) error {
		if value == "" {
			return nil
		}
		var n int64
		q := db.WithContext(c.Request.Context()).Model(&model.User{}).Where(column+" = ?", value)
		if exceptID != 0 {
			q = q.Where("id <> ?", exceptID)
		}
		if err := q.Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			fields[column] = append(fields[column], message)
		}
		return nil
	}
	if err := check("username", username, "The username has already been taken."); err != nil {
		return err
	}
	if err := check("email", email, "The email has already been taken."); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	msg := "The username has already been taken."
	if m, ok := fields["email"]; ok {
		msg = m[0]
	}
	return &apperror.Error{Kind: apperror.Validation, Message: msg, Fields: fields}
}

// HashPassword bcrypts password. The binding rule counts runes, so a password
// over bcrypt's 72 byte limit is reported as a validation error here.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperror.Invalid("password", "The password may not be greater than 72 bytes.")
	}
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
