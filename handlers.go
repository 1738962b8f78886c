package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gabekutner/roommatefinder-backend/models"
	"github.com/gabekutner/roommatefinder-backend/pkg/ranking"
)

func setupRoutes(r *gin.Engine, ws gin.HandlerFunc) {
	api := r.Group("/api/v1")
	api.POST("/signup", signupHandler)
	api.POST("/verify-otp", verifyOTPHandler)
	api.POST("/refresh", refreshHandler)
	api.POST("/revoke_refresh", revokeRefreshHandler)

	authGroup := api.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.POST("/profile", updateProfileHandler)
	authGroup.GET("/profile", getProfileHandler)
	authGroup.POST("/profile/block/:id", blockProfileHandler)
	authGroup.POST("/profile/unblock/:id", unblockProfileHandler)
	authGroup.POST("/photos", uploadPhotoHandler)
	authGroup.GET("/photos", listPhotosHandler)
	authGroup.GET("/matches", matchesHandler)

	// Persistent socket. Identity is resolved inside the handler because
	// browsers can't set headers on websocket upgrades (token query param).
	r.GET("/ws", ws)
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		id, err := parseAccessToken(authHeader[7:])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		c.Set("profile_id", id)
		c.Next()
	}
}

// getProfileFromContext fetches the currently authenticated profile using the id set by jwtAuthMiddleware
func getProfileFromContext(c *gin.Context) (*models.Profile, bool) {
	idVal, _ := c.Get("profile_id")
	id, ok := idVal.(uuid.UUID)
	if !ok {
		return nil, false
	}
	var profile models.Profile
	if err := db.First(&profile, "id = ?", id).Error; err != nil {
		return nil, false
	}
	return &profile, true
}

func signupHandler(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := IssueOTP(req.Identifier); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "otp sent"})
}

func verifyOTPHandler(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
		Code       string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile, err := VerifyOTP(req.Identifier, req.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := mintAccessToken(profile, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refreshToken, err := createAndStoreRefreshToken(profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "refresh_token": refreshToken, "profile": profile})
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var profile models.Profile
	if err := db.First(&profile, "id = ?", rt.ProfileID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
		return
	}
	token, err := mintAccessToken(&profile, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate refresh token: revoke existing and create new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := createAndStoreRefreshToken(profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

func meHandler(c *gin.Context) {
	profile, ok := getProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// updateProfileHandler fills in the roommate questionnaire. Once the
// matching attributes are present the profile counts as a complete account
// and shows up in other users' match decks.
func updateProfileHandler(c *gin.Context) {
	profile, ok := getProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
		return
	}
	var req struct {
		Name           string   `json:"name" binding:"required"`
		Age            *uint    `json:"age"`
		GraduationYear *uint    `json:"graduation_year"`
		Description    string   `json:"description"`
		Sex            string   `json:"sex" binding:"required"`
		ShowMe         string   `json:"show_me"`
		DormBuilding   string   `json:"dorm_building" binding:"required"`
		Major          string   `json:"major"`
		State          string   `json:"state"`
		Interests      []string `json:"interests"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := models.SexChoices[req.Sex]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sex code"})
		return
	}
	if _, ok := models.DormChoices[req.DormBuilding]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dorm code"})
		return
	}
	if !models.ValidInterests(req.Interests) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interests (max 5 known codes)"})
		return
	}

	profile.Name = req.Name
	profile.Age = req.Age
	profile.GraduationYear = req.GraduationYear
	profile.Description = req.Description
	profile.Sex = req.Sex
	profile.ShowMe = req.ShowMe
	profile.DormBuilding = req.DormBuilding
	profile.Major = req.Major
	profile.State = req.State
	profile.Interests = req.Interests
	profile.HasAccount = true
	if err := db.Save(profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func getProfileHandler(c *gin.Context) {
	profile, ok := getProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
		return
	}
	var full models.Profile
	if err := db.Preload("Photos").First(&full, "id = ?", profile.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, full)
}

func blockProfileHandler(c *gin.Context) {
	profile, ok := getProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
		return
	}
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var target models.Profile
	if err := db.First(&target, "id = ?", targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	if err := db.Model(profile).Association("BlockedProfiles").Append(&target); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to block"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "blocked"})
}

func unblockProfileHandler(c *gin.Context) {
	profile, ok := getProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
		return
	}
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var target models.Profile
	if err := db.First(&target, "id = ?", targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	if err := db.Model(profile).Association("BlockedProfiles").Delete(&target); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unblock"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unblocked"})
}

// uploadPhotoHandler handles multipart image upload for the current profile.
func uploadPhotoHandler(c *gin.Context) {
	profile, ok := getProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > 5*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 5MB)"})
		return
	}
	ct := file.Header.Get("Content-Type")
	relPath := "photos/" + profile.ID.String() + "/" + file.Filename
	fullPath := mediaBaseDir() + "/" + relPath
	if err := os.MkdirAll(mediaBaseDir()+"/photos/"+profile.ID.String(), 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mkdir failed"})
		return
	}
	if err := c.SaveUploadedFile(file, fullPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	photo := models.Photo{ProfileID: profile.ID, FileName: file.Filename, StorePath: relPath, ContentType: ct}
	if err := db.Create(&photo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": photo.ID, "store_path": relPath})
}

func listPhotosHandler(c *gin.Context) {
	profile, ok := getProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
		return
	}
	var photos []models.Photo
	if err := db.Where("profile_id = ?", profile.ID).Order("created_at desc").Find(&photos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, photos)
}

// matchesHandler returns candidate roommates ordered by the ranking
// engine, with blocked profiles (both directions) removed.
func matchesHandler(c *gin.Context) {
	profile, ok := getProfileFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "profile not found"})
		return
	}

	var pool []models.Profile
	if err := db.Where("has_account = ?", true).Find(&pool).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	var connections []models.Connection
	if err := db.Where("sender_id = ? OR receiver_id = ?", profile.ID, profile.ID).Find(&connections).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	blocked := blockedEitherDirection(profile.ID)
	ranked := ranking.Rank(profile, pool, connections)
	out := make([]models.Profile, 0, len(ranked))
	for _, p := range ranked {
		if blocked[p.ID] {
			continue
		}
		out = append(out, p)
	}
	c.JSON(http.StatusOK, out)
}

// blockedEitherDirection collects ids the profile blocked plus ids that
// blocked the profile.
func blockedEitherDirection(profileID uuid.UUID) map[uuid.UUID]bool {
	blocked := make(map[uuid.UUID]bool)
	type row struct {
		ProfileID uuid.UUID
		BlockedID uuid.UUID
	}
	var rows []row
	if err := db.Table("profile_blocks").
		Where("profile_id = ? OR blocked_id = ?", profileID, profileID).
		Find(&rows).Error; err != nil {
		return blocked
	}
	for _, r := range rows {
		if r.ProfileID == profileID {
			blocked[r.BlockedID] = true
		} else {
			blocked[r.ProfileID] = true
		}
	}
	return blocked
}
