package networkimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/network-feed/internal/network"
	"github.com/orgball2608/network-feed/pkg/config"
	"github.com/orgball2608/network-feed/pkg/errors"
	"github.com/orgball2608/network-feed/pkg/logger"
	"go.uber.org/fx"
)

const (
	sessionCookieName = "sessionid"
	csrfCookieName    = "csrftoken"
	csrfFormField     = "csrfmiddlewaretoken"
	loginPath         = "/login"
	maxErrorBody      = 64 << 10
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type NetworkImpl struct {
	httpClient *http.Client
	baseURL    *url.URL
	csrfToken  string
	timeout    time.Duration
	logger     logger.Logger
}

var _ network.Client = (*NetworkImpl)(nil)

func New(opts Opts) (*NetworkImpl, error) {
	base, err := url.Parse(opts.Config.Network.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid network base url %q: %w", opts.Config.Network.BaseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	var cookies []*http.Cookie
	if opts.Config.Network.SessionCookie != "" {
		cookies = append(cookies, &http.Cookie{Name: sessionCookieName, Value: opts.Config.Network.SessionCookie, Path: "/"})
	}
	if opts.Config.Network.CSRFToken != "" {
		cookies = append(cookies, &http.Cookie{Name: csrfCookieName, Value: opts.Config.Network.CSRFToken, Path: "/"})
	}
	jar.SetCookies(base, cookies)

	timeout := opts.Config.Network.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &NetworkImpl{
		httpClient: &http.Client{
			Jar: jar,
			// login_required views answer with a redirect to the login page;
			// surface that as a failed call instead of following it.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL:   base,
		csrfToken: opts.Config.Network.CSRFToken,
		timeout:   timeout,
		logger:    opts.Logger.WithComponent("NetworkClient"),
	}, nil
}

// request describes one call to the posts API.
type request struct {
	method string
	path   []string
	// json is sent as a JSON body, form as a urlencoded one.
	json any
	form url.Values
	// out receives a 2xx JSON body when non-nil.
	out any
	// redirectOK accepts a redirect as success unless it points at the
	// login page. Form views answer with a redirect once they are done.
	redirectOK bool
}

func (n *NetworkImpl) do(ctx context.Context, call request) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	var (
		reader      io.Reader
		contentType string
	)
	switch {
	case call.json != nil:
		payload, err := json.Marshal(call.json)
		if err != nil {
			return errors.WrapWithCode(err, errors.CodeDecode, "failed to encode request body")
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	case call.form != nil:
		form := url.Values{}
		for k, v := range call.form {
			form[k] = v
		}
		form.Set(csrfFormField, n.csrfToken)
		reader = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	endpoint := n.baseURL.JoinPath(call.path...)
	req, err := http.NewRequestWithContext(ctx, call.method, endpoint.String(), reader)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeTransport, "failed to build request")
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if call.method != http.MethodGet {
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("X-CSRFToken", n.csrfToken)
		req.Header.Set("Referer", n.baseURL.String())
	}

	start := time.Now()
	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Error("Posts API request failed", "method", call.method, "url", endpoint.Path, "request_id", requestID, "error", err)
		return errors.WrapWithCode(err, errors.CodeTransport, fmt.Sprintf("%s %s", call.method, endpoint.Path))
	}
	defer safeClose(resp.Body, n.logger)

	n.logger.Debug("Posts API request",
		"method", call.method,
		"url", endpoint.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start).Round(time.Millisecond).String())

	if call.redirectOK && isRedirect(resp.StatusCode) && !strings.Contains(resp.Header.Get("Location"), loginPath) {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if call.out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(call.out); err != nil {
		return errors.WrapWithCode(err, errors.CodeDecode, fmt.Sprintf("failed to decode %s response", endpoint.Path))
	}
	return nil
}

func isRedirect(code int) bool {
	return code >= 300 && code <= 399
}

func statusError(resp *http.Response) *network.StatusError {
	statusErr := &network.StatusError{
		Code:   resp.StatusCode,
		Status: statusText(resp),
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(raw) > 0 {
		var body struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &body) == nil {
			statusErr.Detail = body.Error
		}
	}
	return statusErr
}

// statusText strips the numeric prefix from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func safeClose(closer io.ReadCloser, log logger.Logger) {
	if err := closer.Close(); err != nil {
		log.Error("Error closing response body", "error", err)
	}
}
