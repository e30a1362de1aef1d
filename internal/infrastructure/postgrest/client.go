package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
	"go.uber.org/zap"
)

// uniqueViolation is the Postgres error code PostgREST reports for a
// duplicate key
const uniqueViolation = "23505"

// Error is a non-2xx PostgREST response
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("postgrest: status %d", e.Status)
	}
	return fmt.Sprintf("postgrest: status %d: %s", e.Status, e.Message)
}

// Client talks to a PostgREST server. Every table is addressed as /<table>
// and filtered with <column>=eq.<value> query parameters.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a PostgREST client. token, when set, is sent as a bearer
// token on every request.
func NewClient(baseURL, token string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// response is a fully read PostgREST reply
type response struct {
	status   int
	header   http.Header
	body     []byte
	location string
}

// do sends one request. path is either "/<table>" or a Location value
// returned by the server.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, prefer ...string) (*response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("postgrest: encode body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("postgrest: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if len(prefer) > 0 {
		req.Header.Set("Prefer", strings.Join(prefer, ","))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("postgrest: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("postgrest: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp.StatusCode, data)
	}

	return &response{
		status:   resp.StatusCode,
		header:   resp.Header,
		body:     data,
		location: resp.Header.Get("Location"),
	}, nil
}

// decodeError maps an error reply, turning unique violations into
// ErrDuplicate
func decodeError(status int, data []byte) error {
	pgErr := &Error{Status: status}
	if len(bytes.TrimSpace(data)) > 0 {
		_ = json.Unmarshal(data, pgErr)
	}
	if status == http.StatusConflict || pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domainRepo.ErrDuplicate, pgErr.Error())
	}
	return pgErr
}

// decodeRows decodes an array reply. An empty body yields no rows.
func decodeRows[T any](data []byte) ([]T, error) {
	var rows []T
	if len(bytes.TrimSpace(data)) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("postgrest: decode rows: %w", err)
	}
	return rows, nil
}

// eq builds a filter set of <column>=eq.<value> pairs; pass column, value, ...
func eq(pairs ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		q.Set(pairs[i], "eq."+pairs[i+1])
	}
	return q
}

// active adds the soft delete filter to q
func active(q url.Values) url.Values {
	q.Set("deleted_at", "is.null")
	return q
}

// find returns every row matching q
func find[T any](ctx context.Context, c *Client, table string, q url.Values) ([]T, error) {
	if q.Get("select") == "" {
		q.Set("select", "*")
	}
	resp, err := c.do(ctx, http.MethodGet, "/"+table, q, nil)
	if err != nil {
		return nil, err
	}
	return decodeRows[T](resp.body)
}

// findCounted returns one page of rows plus the exact total taken from the
// Content-Range header
func findCounted[T any](ctx context.Context, c *Client, table string, q url.Values, offset, limit int) ([]T, int64, error) {
	if q.Get("select") == "" {
		q.Set("select", "*")
	}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	resp, err := c.do(ctx, http.MethodGet, "/"+table, q, nil, "count=exact")
	if err != nil {
		return nil, 0, err
	}
	rows, err := decodeRows[T](resp.body)
	if err != nil {
		return nil, 0, err
	}
	return rows, parseContentRangeTotal(resp.header.Get("Content-Range"), len(rows)), nil
}

// parseContentRangeTotal reads the total from "0-14/42". An unknown total
// ("*") falls back to fallback.
func parseContentRangeTotal(header string, fallback int) int64 {
	idx := strings.LastIndex(header, "/")
	if idx < 0 {
		return int64(fallback)
	}
	total, err := strconv.ParseInt(header[idx+1:], 10, 64)
	if err != nil {
		return int64(fallback)
	}
	return total
}

// first returns the first row matching q, or nil. Reads always return an
// array, so the row is unwrapped from index 0.
func first[T any](ctx context.Context, c *Client, table string, q url.Values) (*T, error) {
	q.Set("limit", "1")
	rows, err := find[T](ctx, c, table, q)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// insert posts row and replaces it with the stored representation. The server
// may answer with the row in the body, with a Location header to follow, or
// with neither; the last case falls back to the newest row matching
// naturalKey.
func insert[T any](ctx context.Context, c *Client, table string, row *T, naturalKey url.Values) error {
	resp, err := c.do(ctx, http.MethodPost, "/"+table, nil, row, "return=representation")
	if err != nil {
		return err
	}

	rows, err := decodeRows[T](resp.body)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		*row = rows[0]
		return nil
	}

	if resp.location != "" {
		followed, err := c.do(ctx, http.MethodGet, resp.location, url.Values{"select": {"*"}}, nil)
		if err != nil {
			return err
		}
		rows, err := decodeRows[T](followed.body)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			*row = rows[0]
			return nil
		}
	}

	if naturalKey == nil {
		return fmt.Errorf("postgrest: insert into %s returned no row", table)
	}
	c.log.Warn("Insert returned no row, searching by natural key",
		zap.String("table", table),
		zap.String("key", naturalKey.Encode()),
	)
	naturalKey.Set("order", "created_at.desc")
	found, err := first[T](ctx, c, table, naturalKey)
	if err != nil {
		return err
	}
	if found == nil {
		return fmt.Errorf("postgrest: inserted %s row not found", table)
	}
	*row = *found
	return nil
}

// patch updates the row with the given id. An empty reply is followed by a
// GET so the caller always sees the stored row; nil means no row matched.
func patch[T any](ctx context.Context, c *Client, table string, id uuid.UUID, fields map[string]interface{}) (*T, error) {
	resp, err := c.do(ctx, http.MethodPatch, "/"+table, eq("id", id.String()), fields, "return=representation")
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows[T](resp.body)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}
	return first[T](ctx, c, table, eq("id", id.String()))
}

// softDelete stamps deleted_at on the row with the given id
func softDelete(ctx context.Context, c *Client, table string, id uuid.UUID) error {
	_, err := c.do(ctx, http.MethodPatch, "/"+table, eq("id", id.String()), map[string]interface{}{
		"deleted_at": time.Now().UTC(),
	})
	return err
}

// remove deletes every row matching q
func remove(ctx context.Context, c *Client, table string, q url.Values) error {
	if len(q) == 0 {
		return errors.New("postgrest: refusing to delete without a filter")
	}
	_, err := c.do(ctx, http.MethodDelete, "/"+table, q, nil)
	return err
}
