package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"go-mrz-validator/metrics"
	"go-mrz-validator/models"
	"go-mrz-validator/mrz"

	"github.com/stretchr/testify/require"
)

const (
	testBaseURL = "http://localhost:8081"

	// sample line with a composite digit matching its first 43 characters
	testValidLine = "L898902C<3UTO6908061F9406236ZE184226B<<<<<14"
	// the same line as it is usually quoted, with a composite digit of 0
	testSampleLine = "L898902C<3UTO6908061F9406236ZE184226B<<<<<10"

	testSpecimenLine1 = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"
	testSpecimenLine2 = "L898902C36UTO7408122F1204159ZE184226B<<<<<10"
)

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

var testConfig = ServerConfig{
	Host:           "localhost",
	Port:           8081,
	UseTls:         false,
	TlsCertPath:    "",
	TlsPrivKeyPath: "",
}

type stateOpt func(*ServerState)

func withJwtCreator(creator JwtCreator) stateOpt {
	return func(s *ServerState) { s.jwtCreator = creator }
}

func withChipReader(reader ChipReader) stateOpt {
	return func(s *ServerState) { s.chipReader = reader }
}

func newTestState(storage ReportStorage, opts ...stateOpt) *ServerState {
	state := &ServerState{
		irmaServerURL: "https://irma.example",
		reportStorage: storage,
		jwtCreator:    fakeJwtCreator{jwt: "test-jwt"},
		verifier:      LineVerifierImpl{},
		chipReader:    ChipReaderImpl{},
		metrics:       metrics.New(),
		now:           func() time.Time { return testNow },
	}
	for _, o := range opts {
		o(state)
	}
	return state
}

func startTestServer(t *testing.T, state *ServerState) *Server {
	t.Helper()

	srv, err := NewServer(state, testConfig)
	require.NoError(t, err)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("server error: %v", err)
		}
	}()

	waitUntilHealthy(t, testBaseURL+"/api/health")
	t.Cleanup(func() {
		if err := srv.Stop(); err != nil {
			t.Logf("error shutting down server: %v", err)
		}
	})
	return srv
}

func waitUntilHealthy(t *testing.T, url string) {
	t.Helper()
	const maxAttempts = 50
	for i := 0; i < maxAttempts; i++ {
		if resp, err := http.Get(url); err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server did not start in time")
}

func postJSON[T any](t *testing.T, url string, payload any) (*http.Response, []byte, *T) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(b)
	}
	resp, err := http.Post(url, "application/json", body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var v T
	_ = json.Unmarshal(respBody, &v)

	return resp, respBody, &v
}

func doRequest(t *testing.T, method, url string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func mustStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	require.Equalf(t, want, resp.StatusCode, "body: %s", body)
}

// Request builders
type reqOpt func(*models.ValidationRequest)

func withLine(line string) reqOpt {
	return func(r *models.ValidationRequest) { r.MRZLine2 = line }
}

func withDG1(hexVal string) reqOpt {
	return func(r *models.ValidationRequest) { r.DG1 = hexVal }
}

// newReq builds a request whose typed values match the sample line
func newReq(opts ...reqOpt) models.ValidationRequest {
	r := models.ValidationRequest{
		MRZLine2:       testValidLine,
		PassportNumber: "L898902C",
		Nationality:    "UTO",
		DateOfBirth:    "1969-08-06",
		Gender:         "F",
		ExpiryDate:     "1994-06-23",
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

// buildDG1Hex wraps a TD3 zone in the DG1 template (tag 61) and MRZ data element (tag 5F1F)
func buildDG1Hex(zone string) string {
	inner := append([]byte{0x5F, 0x1F, byte(len(zone))}, []byte(zone)...)
	outer := append([]byte{0x61, byte(len(inner))}, inner...)
	return hex.EncodeToString(outer)
}

// test doubles

type fakeJwtCreator struct {
	jwt string
	err error
}

func (f fakeJwtCreator) CreateMRZJwt(_ models.MRZData) (string, error) {
	return f.jwt, f.err
}

// recordingJwtCreator keeps the data it was asked to sign
type recordingJwtCreator struct {
	data *models.MRZData
}

func (r recordingJwtCreator) CreateMRZJwt(data models.MRZData) (string, error) {
	*r.data = data
	return "recorded-jwt", nil
}

type fakeChipReader struct{ err error }

func (f fakeChipReader) ExpectedFromDG1(_ string, _ time.Time) (expected mrz.Expected, err error) {
	return expected, f.err
}
