package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Alexander2005-rgb/attendance-backend/internal/auth"
	"github.com/Alexander2005-rgb/attendance-backend/internal/user"
)

type registerRequest struct {
	Name       string  `form:"name" binding:"required"`
	Email      string  `form:"email" binding:"required,email"`
	Password   string  `form:"password" binding:"required"`
	Role       string  `form:"role"`
	Class      string  `form:"class"`
	Year       *int    `form:"year"`
	RollNumber *string `form:"rollNumber"`
}

// Register handles multipart registration with an optional photo file. Only
// the stored filename reference ends up on the user record.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var photoName string
	if h.photos != nil {
		if file, header, err := c.Request.FormFile("photo"); err == nil {
			defer file.Close()
			photoName, err = h.photos.Save(file, header.Filename)
			if err != nil {
				log.Printf("photo save failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "photo upload failed"})
				return
			}
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}

	u := user.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Class:        req.Class,
		Year:         req.Year,
		RollNumber:   req.RollNumber,
		Photo:        photoName,
	}
	if err := h.dir.Create(c.Request.Context(), &u); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "User registered successfully"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a signed, time-limited token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.dir.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondErr(c, err)
		return
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid credentials"})
		return
	}

	token, _, err := auth.Issue(u.ID, u.Role, h.issuer, h.signingKey, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "role": u.Role})
}

type updateUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	Class      *string `json:"class"`
	Year       *int    `json:"year"`
	RollNumber *string `json:"rollNumber"`
}

// UpdateUser applies a partial update; omitted fields are left unchanged and
// a supplied password is re-hashed.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := user.UpdateFields{
		Name:       req.Name,
		Email:      req.Email,
		Class:      req.Class,
		Year:       req.Year,
		RollNumber: req.RollNumber,
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}
		fields.PasswordHash = &hash
	}

	if err := h.dir.Update(c.Request.Context(), c.Param("id"), fields); err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "User updated successfully"})
}
