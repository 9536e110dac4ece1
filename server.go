package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go-mrz-validator/document"
	"go-mrz-validator/metrics"
	"go-mrz-validator/models"
	"go-mrz-validator/mrz"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const ErrorInternal = "error:internal"
const ERR_MARSHAL = "failed to marshal response message"
const ERR_DECODE_REQUEST = "failed to decode request body"
const ERR_MRZ_DECODE = "failed to decode MRZ line"
const ERR_MRZ_VERIFY = "failed to verify MRZ line"
const ERR_REPORT_STORE = "failed to store report"
const ERR_REPORT_RETRIEVAL = "failed to get report from storage"
const ERR_REPORT_REMOVAL = "failed to remove report from storage"
const ERR_CHECK_DIGITS = "check digits do not match"
const ERR_EXPIRED = "document is expired"
const ERR_ISSUANCE_DISABLED = "issuance is not configured"
const ERR_JWT_CREATION = "failed to create jwt"

var (
	ErrInvalidExpected = errors.New("invalid expected values")
	ErrChipRead        = errors.New("failed to read DG1")
)

type ServerConfig struct {
	Host           string `json:"host" yaml:"host"`
	Port           int    `json:"port" yaml:"port"`
	UseTls         bool   `json:"use_tls,omitempty" yaml:"use_tls,omitempty"`
	TlsPrivKeyPath string `json:"tls_priv_key_path,omitempty" yaml:"tls_priv_key_path,omitempty"`
	TlsCertPath    string `json:"tls_cert_path,omitempty" yaml:"tls_cert_path,omitempty"`
}

type ServerState struct {
	irmaServerURL string
	reportStorage ReportStorage
	// nil when no signing key is configured
	jwtCreator JwtCreator
	verifier   LineVerifier
	chipReader ChipReader
	metrics    *metrics.Metrics
	now        func() time.Time
}

func (s *ServerState) currentTime() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

type Server struct {
	server *http.Server
	config ServerConfig
}

func (s *Server) ListenAndServe() error {
	if s.config.UseTls {
		slog.Info("Starting server with TLS", "host", s.config.Host, "port", s.config.Port, "cert", s.config.TlsCertPath, "key", s.config.TlsPrivKeyPath)
		return s.server.ListenAndServeTLS(s.config.TlsCertPath, s.config.TlsPrivKeyPath)
	} else {
		slog.Info("Starting server without TLS", "host", s.config.Host, "port", s.config.Port)
		return s.server.ListenAndServe()
	}
}

func (s *Server) Stop() error {
	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		slog.Error("Error during server shutdown", "error", err)
	} else {
		slog.Info("Server shut down successfully")
	}
	return err
}

func NewServer(state *ServerState, config ServerConfig) (*Server, error) {
	slog.Info("Creating new server", "host", config.Host, "port", config.Port, "tls", config.UseTls)
	router := mux.NewRouter()

	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("Health check request received")
		err := json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		if err != nil {
			slog.Error("failed to write body to http response", "error", err)
		}
	})

	router.HandleFunc("/api/validate", func(w http.ResponseWriter, r *http.Request) {
		handleValidate(state, w, r)
	})
	router.HandleFunc("/api/issue", func(w http.ResponseWriter, r *http.Request) {
		handleIssue(state, w, r)
	})
	router.HandleFunc("/api/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleGetReport(state, w, r)
	}).Methods(http.MethodGet)
	router.HandleFunc("/api/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleDeleteReport(state, w, r)
	}).Methods(http.MethodDelete)
	router.Handle("/metrics", state.metrics.Handler()).Methods(http.MethodGet)

	slog.Debug("Registered all API routes")

	addr := fmt.Sprintf("%v:%v", config.Host, config.Port)
	srv := &http.Server{
		Handler:      router,
		Addr:         addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	slog.Info("Server created successfully", "address", addr)
	return &Server{
		server: srv,
		config: config,
	}, nil
}

func handleValidate(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	slog.Info("Received request to validate an MRZ line")

	request, err := decodeValidationRequest(r)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request", ERR_DECODE_REQUEST, err)
		return
	}

	report, chipChecked, err := VerifyLineRequest(state, request)
	if err != nil {
		respondWithVerifyErr(state, w, err)
		return
	}

	response := toValidationResponse(GenerateReportId(), report, chipChecked, state.currentTime())

	slog.Debug("Storing validation report", "report_id", response.ReportId)
	if err := state.reportStorage.StoreReport(response.ReportId, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_REPORT_STORE, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("MRZ line validated", "report_id", response.ReportId, "valid", response.Valid, "chip_checked", chipChecked)
}

func handleIssue(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	slog.Info("Received request to verify and issue an MRZ line")

	if state.jwtCreator == nil {
		respondWithErr(w, http.StatusServiceUnavailable, ERR_ISSUANCE_DISABLED, ERR_ISSUANCE_DISABLED, nil)
		return
	}

	request, err := decodeValidationRequest(r)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request", ERR_DECODE_REQUEST, err)
		return
	}

	report, chipChecked, err := VerifyLineRequest(state, request)
	if err != nil {
		respondWithVerifyErr(state, w, err)
		return
	}

	if !report.Valid {
		respondWithErr(w, http.StatusBadRequest, ERR_CHECK_DIGITS, ERR_CHECK_DIGITS,
			fmt.Errorf("failed checks: %v", checkNames(report.Failed(mrz.KindCheckDigit))))
		return
	}
	if report.Expired {
		respondWithErr(w, http.StatusBadRequest, ERR_EXPIRED, ERR_EXPIRED, nil)
		return
	}

	slog.Debug("Creating MRZ JWT", "chip_checked", chipChecked)
	jwt, err := state.jwtCreator.CreateMRZJwt(toMRZData(report, chipChecked, state.currentTime()))
	if err != nil {
		respondWithErr(w, http.StatusInternalServerError, ERR_JWT_CREATION, ERR_JWT_CREATION, err)
		return
	}

	response := models.IssuanceResponse{
		Jwt:           jwt,
		IrmaServerURL: state.irmaServerURL,
	}

	state.metrics.IncrementCredentialsIssued()

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("MRZ credential issued successfully", "chip_checked", chipChecked)
}

func handleGetReport(state *ServerState, w http.ResponseWriter, r *http.Request) {
	reportId := mux.Vars(r)["id"]
	slog.Debug("Retrieving report", "report_id", reportId)

	report, err := state.reportStorage.RetrieveReport(reportId)
	if errors.Is(err, ErrReportNotFound) {
		respondWithErr(w, http.StatusNotFound, "report not found", ERR_REPORT_RETRIEVAL, err)
		return
	}
	if err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_REPORT_RETRIEVAL, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, report); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
	}
}

func handleDeleteReport(state *ServerState, w http.ResponseWriter, r *http.Request) {
	reportId := mux.Vars(r)["id"]
	slog.Debug("Removing report", "report_id", reportId)

	err := state.reportStorage.RemoveReport(reportId)
	if errors.Is(err, ErrReportNotFound) {
		respondWithErr(w, http.StatusNotFound, "report not found", ERR_REPORT_REMOVAL, err)
		return
	}
	if err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_REPORT_REMOVAL, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	slog.Info("Report removed", "report_id", reportId)
}

// VerifyLineRequest builds the expectations of a request, from the chip when a
// DG1 is given, and verifies the normalized line against them.
func VerifyLineRequest(state *ServerState, request models.ValidationRequest) (*mrz.Report, bool, error) {
	now := state.currentTime()
	chipChecked := request.DG1 != ""

	var expected mrz.Expected
	var err error
	if chipChecked {
		slog.Debug("Reading expectations from DG1")
		expected, err = state.chipReader.ExpectedFromDG1(request.DG1, now)
		if err != nil {
			return nil, chipChecked, fmt.Errorf("%w: %w", ErrChipRead, err)
		}
	} else {
		expected, err = expectedFromRequest(request)
		if err != nil {
			return nil, chipChecked, fmt.Errorf("%w: %w", ErrInvalidExpected, err)
		}
	}

	report, err := state.verifier.Verify(NormalizeInput(request.MRZLine2), expected, now)
	if err != nil {
		return nil, chipChecked, err
	}

	state.metrics.ObserveValidation(report.Valid)
	for _, check := range report.Failed(mrz.KindCheckDigit) {
		state.metrics.IncrementCheckDigitFailures(check.Name)
	}

	slog.Debug("MRZ line verified", "valid", report.Valid, "expired", report.Expired,
		"failed_field_matches", len(report.Failed(mrz.KindFieldMatch)))
	return report, chipChecked, nil
}

// respondWithVerifyErr answers decode failures with a 422 and a body telling the
// two kinds apart, anything else is a bad request.
func respondWithVerifyErr(state *ServerState, w http.ResponseWriter, err error) {
	var formatErr *mrz.FormatError
	if errors.Is(err, ErrInvalidExpected) || errors.Is(err, ErrChipRead) || !errors.As(err, &formatErr) {
		respondWithErr(w, http.StatusBadRequest, "invalid request", ERR_MRZ_VERIFY, err)
		return
	}

	state.metrics.IncrementDecodeFailures(formatErr.Kind.String())
	slog.Warn(ERR_MRZ_DECODE, "error", err, "kind", formatErr.Kind.String(), "field", formatErr.Field)

	response := models.ErrorResponse{
		Error: err.Error(),
		Kind:  formatErr.Kind.String(),
		Field: string(formatErr.Field),
	}
	if err := writeJSON(w, http.StatusUnprocessableEntity, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
	}
}

func toValidationResponse(reportId string, report *mrz.Report, chipChecked bool, now time.Time) models.ValidationResponse {
	record := report.Record

	checks := make([]models.CheckResult, 0, len(report.Checks))
	for _, check := range report.Checks {
		checks = append(checks, models.CheckResult{
			Name:   check.Name,
			Kind:   string(check.Kind),
			Passed: check.Passed,
		})
	}

	return models.ValidationResponse{
		ReportId: reportId,
		Record: models.MRZRecord{
			PassportNumber:       record.PassportNumber(),
			PassportCheckDigit:   string(record.PassportCheckDigit()),
			Nationality:          record.Nationality(),
			DateOfBirth:          record.DateOfBirth().String(),
			DOBCheckDigit:        string(record.DOBCheckDigit()),
			Sex:                  string(record.Sex()),
			ExpirationDate:       record.ExpirationDate().String(),
			ExpirationCheckDigit: string(record.ExpirationCheckDigit()),
			PersonalNumber:       record.PersonalNumber(),
			PersonalCheckDigit:   string(record.PersonalCheckDigit()),
			CompositeCheckDigit:  string(record.CompositeCheckDigit()),
		},
		Checks:      checks,
		Valid:       report.Valid,
		IsExpired:   report.Expired,
		ChipChecked: chipChecked,
		CreatedAt:   now.UTC(),
	}
}

func toMRZData(report *mrz.Report, chipChecked bool, now time.Time) models.MRZData {
	record := report.Record

	gender := string(record.Sex())
	if record.Sex() == mrz.Filler {
		gender = "X"
	}

	return models.MRZData{
		DocumentNumber: record.PassportNumber(),
		Nationality:    record.Nationality(),
		IsEuCitizen:    document.BoolToYesNo(document.IsEuCitizen(record.Nationality())),
		DateOfBirth:    record.DateOfBirth().BirthTime(now),
		DateOfExpiry:   record.ExpirationDate().ExpiryTime(now),
		Gender:         gender,
		PersonalNumber: record.PersonalNumber(),
		ChipChecked:    document.BoolToYesNo(chipChecked),
	}
}

func checkNames(checks []mrz.Check) []string {
	names := make([]string, 0, len(checks))
	for _, check := range checks {
		names = append(names, check.Name)
	}
	return names
}

// decodeValidationRequest decodes the request body
func decodeValidationRequest(r *http.Request) (models.ValidationRequest, error) {
	slog.Debug("Decoding validation request body")
	var request models.ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		slog.Warn("Failed to decode validation request", "error", err)
		return request, fmt.Errorf("decode request body: %w", err)
	}
	return request, nil
}

func GenerateReportId() string {
	return uuid.NewString()
}

func respondWithErr(w http.ResponseWriter, code int, responseBody string, logMsg string, e error) {
	slog.Error(logMsg, "error", e, "status_code", code, "response_body", responseBody)
	w.WriteHeader(code)
	if _, err := w.Write([]byte(responseBody)); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
}

// helpers ------------

func closeRequestBody(r *http.Request) {
	if err := r.Body.Close(); err != nil {
		slog.Error("failed to close request body", "error", err)
	}
}

func requirePOST(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		slog.Debug("Non-POST request rejected", "method", r.Method, "path", r.URL.Path)
		respondWithErr(w, http.StatusMethodNotAllowed, "method not allowed", "invalid method", nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	slog.Debug("Writing JSON response", "status_code", status)
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal JSON payload", "error", err)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	if err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
	return nil
}
