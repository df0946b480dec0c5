package api

import (
	"encoding/csv" // CSV export
	"net/http"     // HTTP status codes
	"strconv"      // String conversion
	"time"         // Timestamp formatting

	"kyc_arena/internal/middleware" // Context helpers
	"kyc_arena/internal/service"    // Submission lifecycle

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
)

// Request struct for creating a submission
type CreateSubmissionRequest struct {
	Email        string `json:"email"`        // Account login
	PasswordHash string `json:"passwordHash"` // Account secret, hashed before storage
	Exchange     string `json:"exchange"`     // Exchange name
}

// Request struct for editing a submission; omitted fields stay unchanged
type UpdateSubmissionRequest struct {
	Email        *string `json:"email"`
	PasswordHash *string `json:"passwordHash"`
	Exchange     *string `json:"exchange"`
}

// Request struct for a verdict
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"` // New status
}

// ListSubmissionsHandler returns the caller's submissions, or the paginated
// global view for reviewers
func ListSubmissionsHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if !middleware.Allowed(user.Role, middleware.CapReview) {
			subs, err := svc.ListSubmissionsForOwner(c.Request.Context(), user.ID)
			if err != nil {
				respondError(c, err, "fetch submissions")
				return
			}
			out := make([]submissionResponse, 0, len(subs))
			for i := range subs {
				out = append(out, toSubmissionResponse(&subs[i]))
			}
			c.JSON(http.StatusOK, out)
			return
		}

		q := service.ListQuery{
			Search: c.Query("search"),
			Status: c.Query("status"),
		}
		// Invalid numbers fall back to the defaults
		q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultPageLimit)))
		page, err := svc.ListSubmissions(c.Request.Context(), q)
		if err != nil {
			respondError(c, err, "fetch submissions")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"data":       toSubmissionWithUserResponses(page.Data), // Rows of this page
			"total":      page.Total,                               // Total matching rows
			"page":       page.Page,                                // Current page
			"limit":      page.Limit,                               // Page size
			"totalPages": page.TotalPages,                          // Total pages
		})
	}
}

// CreateSubmissionHandler records a new submission for the caller
func CreateSubmissionHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSubmissionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		user := middleware.CurrentUser(c)
		sub, err := svc.CreateSubmission(c.Request.Context(), user, service.NewSubmission{
			Email:    req.Email,
			Password: req.PasswordHash,
			Exchange: req.Exchange,
		})
		if err != nil {
			respondError(c, err, "create submission")
			return
		}
		logrus.WithFields(logrus.Fields{
			"submission_id": sub.ID,
			"user_id":       user.ID,
			"exchange":      sub.Exchange,
		}).Info("Submission created")
		c.JSON(http.StatusCreated, toSubmissionResponse(sub))
	}
}

// UpdateSubmissionHandler edits the credentials of a submission
func UpdateSubmissionHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req UpdateSubmissionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		sub, err := svc.UpdateSubmissionFields(c.Request.Context(), middleware.CurrentUser(c), id, service.SubmissionPatch{
			Email:    req.Email,
			Password: req.PasswordHash,
			Exchange: req.Exchange,
		})
		if err != nil {
			respondError(c, err, "update submission")
			return
		}
		c.JSON(http.StatusOK, toSubmissionResponse(sub))
	}
}

// UpdateSubmissionStatusHandler sets the verdict of a submission
func UpdateSubmissionStatusHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req UpdateStatusRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
			return
		}
		sub, err := svc.UpdateSubmissionStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondError(c, err, "update status")
			return
		}
		logrus.WithFields(logrus.Fields{
			"submission_id": sub.ID,
			"status":        sub.Status,
			"admin_id":      middleware.CurrentUser(c).ID,
		}).Info("Submission status updated")
		c.JSON(http.StatusOK, toSubmissionResponse(sub))
	}
}

// DeleteSubmissionHandler removes one submission
func DeleteSubmissionHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := svc.DeleteSubmission(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
			respondError(c, err, "delete submission")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// DeleteNonPendingHandler removes reviewed submissions
func DeleteNonPendingHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		n, err := svc.DeleteNonPending(c.Request.Context(), user)
		if err != nil {
			respondError(c, err, "delete submissions")
			return
		}
		logrus.WithFields(logrus.Fields{"user_id": user.ID, "deleted": n}).Info("Reviewed submissions deleted")
		c.JSON(http.StatusOK, gin.H{"success": true, "deletedCount": n})
	}
}

var exportHeader = []string{"id", "username", "email", "exchange", "status", "notes", "createdAt", "updatedAt"}

// ExportSubmissionsHandler dumps every submission as JSON or, with
// ?format=csv, as a CSV attachment
func ExportSubmissionsHandler(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := svc.ExportSubmissions(c.Request.Context())
		if err != nil {
			respondError(c, err, "export submissions")
			return
		}
		if c.Query("format") != "csv" {
			c.JSON(http.StatusOK, toSubmissionWithUserResponses(rows))
			return
		}

		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="submissions.csv"`)
		c.Status(http.StatusOK)
		w := csv.NewWriter(c.Writer)
		_ = w.Write(exportHeader)
		for _, r := range rows {
			notes := ""
			if r.Notes != nil {
				notes = *r.Notes
			}
			_ = w.Write([]string{
				strconv.FormatUint(uint64(r.ID), 10),
				r.Username,
				r.Email,
				r.Exchange,
				string(r.Status),
				notes,
				r.CreatedAt.UTC().Format(time.RFC3339),
				r.UpdatedAt.UTC().Format(time.RFC3339),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			logrus.WithFields(logrus.Fields{"error": err.Error()}).Error("Failed to write CSV export")
		}
	}
}
