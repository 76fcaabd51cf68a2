package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/common"
	"github.com/joseph-ayodele/payment-verifier/internal/discovery"
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
	"github.com/joseph-ayodele/payment-verifier/internal/providers"
)

const maxJSONBody = 64 << 10

type telebirrRequest struct {
	TransactionID string `json:"transaction_id"`
}

type boaRequest struct {
	TransactionID string `json:"transaction_id"`
	SenderAccount string `json:"sender_account"`
}

type cbeRequest struct {
	TransactionID string `json:"transaction_id"`
	AccountNumber string `json:"account_number"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Payment Verification API is running!"})
}

func (s *Server) handleVerifyTelebirr(c *gin.Context) {
	var req telebirrRequest
	if !s.bindJSON(c, telebirrRequestSchema, &req) {
		return
	}
	res := s.deps.Telebirr.Verify(c.Request.Context(), entity.VerifyRequest{TransactionID: req.TransactionID})
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleVerifyBOA(c *gin.Context) {
	var req boaRequest
	if !s.bindJSON(c, boaRequestSchema, &req) {
		return
	}
	if err := providers.ValidateBOAAccount(req.SenderAccount); err != nil {
		s.badRequest(c, req.TransactionID, constants.StatusInvalidInput,
			fmt.Sprintf("sender_account must have at least %d characters.", constants.BOAAccountSuffixLen), err)
		return
	}
	res := s.deps.BOA.Verify(c.Request.Context(), entity.VerifyRequest{TransactionID: req.TransactionID, Account: req.SenderAccount})
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleVerifyCBE(c *gin.Context) {
	var req cbeRequest
	if !s.bindJSON(c, cbeRequestSchema, &req) {
		return
	}
	res := s.deps.CBE.Verify(c.Request.Context(), entity.VerifyRequest{TransactionID: req.TransactionID, Account: req.AccountNumber})
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleVerifyTelebirrImage(c *gin.Context) {
	id, ok := s.discover(c, discovery.ModeOCR)
	if !ok {
		return
	}
	res := s.deps.Telebirr.Verify(c.Request.Context(), entity.VerifyRequest{TransactionID: entity.Deref(id.TransactionID)})
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleVerifyBOAImage(c *gin.Context) {
	id, ok := s.discover(c, discovery.ModeOCR)
	if !ok {
		return
	}
	txID := entity.Deref(id.TransactionID)
	account := c.PostForm("sender_account_input")
	if providers.ValidateBOAAccount(account) != nil {
		c.JSON(http.StatusOK, providers.AccountRequired(constants.BOA, txID))
		return
	}
	res := s.deps.BOA.Verify(c.Request.Context(), entity.VerifyRequest{TransactionID: txID, Account: account})
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleVerifyCBEImage(c *gin.Context) {
	id, ok := s.discover(c, discovery.ModeQRThenOCR)
	if !ok {
		return
	}
	txID := entity.Deref(id.TransactionID)
	account := c.PostForm("account_number_input")
	if account == "" && id.AccountFragment != nil {
		account = *id.AccountFragment
	}
	if providers.ValidateCBEAccount(account) != nil {
		c.JSON(http.StatusOK, providers.AccountRequired(constants.CBE, txID))
		return
	}
	res := s.deps.CBE.Verify(c.Request.Context(), entity.VerifyRequest{TransactionID: txID, Account: account})
	c.JSON(http.StatusOK, res)
}

// bindJSON validates the body against schema and writes the 422 response on failure.
func (s *Server) bindJSON(c *gin.Context, schema *jsonschema.Schema, out any) bool {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxJSONBody))
	if err == nil {
		err = decodeAndValidate(schema, raw, out)
	}
	if err == nil {
		return true
	}

	var vf *ValidationFailure
	if !errors.As(err, &vf) {
		vf = &ValidationFailure{Details: []FieldError{{Field: "body", Message: err.Error(), Type: "read_error"}}, Cause: err}
	}
	common.LoggerFromContext(c.Request.Context(), s.logger).Warn("http.validation_failed", "path", c.FullPath(), "error", vf.Cause)
	c.JSON(common.HTTPStatus(vf), gin.H{
		"detail":     vf.Details,
		"message":    "Request validation failed",
		"debug_info": vf.Cause.Error(),
	})
	return false
}

// discover reads the uploaded image and runs identifier discovery; on failure it
// writes the 4xx response and returns false.
func (s *Server) discover(c *gin.Context, mode discovery.Mode) (entity.Identifier, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		vf := &ValidationFailure{Details: []FieldError{{Field: "file", Message: "field required", Type: "missing"}}, Cause: err}
		c.JSON(common.HTTPStatus(vf), gin.H{
			"detail":     vf.Details,
			"message":    "Request validation failed",
			"debug_info": err.Error(),
		})
		return entity.Identifier{}, false
	}

	ext := constants.NormalizeExt(filepath.Ext(fh.Filename))
	if _, ok := constants.AllowedImageExtensions[ext]; !ok && ext != "" {
		s.badRequest(c, "", constants.StatusInvalidImage, "Unsupported image type: "+ext,
			common.NewAppError("INVALID_IMAGE", "unsupported extension "+ext, common.ErrInvalidImage))
		return entity.Identifier{}, false
	}
	if fh.Size > constants.MaxUploadMB<<20 {
		s.badRequest(c, "", constants.StatusInvalidImage,
			fmt.Sprintf("Image exceeds the %d MB upload limit.", constants.MaxUploadMB),
			common.NewAppError("INVALID_IMAGE", "upload too large", common.ErrInvalidImage))
		return entity.Identifier{}, false
	}

	f, err := fh.Open()
	if err != nil {
		s.badRequest(c, "", constants.StatusInvalidImage, "Could not read the uploaded image.", err)
		return entity.Identifier{}, false
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		s.badRequest(c, "", constants.StatusInvalidImage, "Could not read the uploaded image.", err)
		return entity.Identifier{}, false
	}

	id, err := s.deps.Discoverer.Discover(c.Request.Context(), discovery.Upload{
		Data:        data,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}, mode)
	if err != nil {
		if errors.Is(err, common.ErrInvalidImage) {
			s.badRequest(c, "", constants.StatusInvalidImage, "The uploaded file is not a valid image.", err)
			return entity.Identifier{}, false
		}
		s.internalError(c, err)
		return entity.Identifier{}, false
	}
	if !id.Found() {
		c.JSON(http.StatusBadRequest, providers.IdentifierNotFound())
		return entity.Identifier{}, false
	}
	return id, true
}

func (s *Server) badRequest(c *gin.Context, txID string, status constants.Status, message string, cause error) {
	common.LoggerFromContext(c.Request.Context(), s.logger).Warn("http.bad_request", "path", c.FullPath(), "status", status, "error", cause)
	debug := cause.Error()
	c.JSON(http.StatusBadRequest, entity.VerificationResult{
		TransactionID: txID,
		Status:        status.String(),
		Message:       message,
		DebugInfo:     &debug,
	})
}
