package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arvrtise/haus/internal/config"
	"github.com/arvrtise/haus/internal/spaces"
)

func testConfig(maxActive int) config.DevServerConfig {
	return config.DevServerConfig{MaxActive: maxActive, TokenID: "id", TokenSecret: "secret"}
}

func newTestServer(t *testing.T, cfg config.DevServerConfig) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(cfg)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("space-%d", n)
	}
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestCreate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cfg        config.DevServerConfig
		wantStatus int
	}{
		{"created", testConfig(5), http.StatusCreated},
		{"missing token id", config.DevServerConfig{MaxActive: 5, TokenSecret: "s"}, http.StatusUnauthorized},
		{"missing token secret", config.DevServerConfig{MaxActive: 5, TokenID: "i"}, http.StatusUnauthorized},
		{"no capacity", testConfig(0), spaces.StatusCapacityLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, ts := newTestServer(t, tt.cfg)
			resp, err := http.Post(ts.URL+spaces.CreatePath, "application/json", nil)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}
			var sp Space
			if err := json.NewDecoder(resp.Body).Decode(&sp); err != nil {
				t.Fatal(err)
			}
			if sp.ID != "space-1" {
				t.Errorf("id = %q, want space-1", sp.ID)
			}
		})
	}
}

func TestCapacityAndDelete(t *testing.T) {
	t.Parallel()

	s, ts := newTestServer(t, testConfig(1))
	client := spaces.NewClient(ts.URL)
	ctx := context.Background()

	sp, err := client.CreateSpace(ctx)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err = client.CreateSpace(ctx)
	var ce *spaces.CreationError
	if !errors.As(err, &ce) || ce.Kind != spaces.KindCapacityLimit {
		t.Fatalf("second create error = %v, want capacity limit", err)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+spaces.CreatePath+"/"+sp.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
	if n := len(s.Active()); n != 0 {
		t.Errorf("active = %d after delete, want 0", n)
	}

	if _, err := client.CreateSpace(ctx); err != nil {
		t.Errorf("create after delete: %v", err)
	}
}

func TestClientAuthorizationError(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, config.DevServerConfig{MaxActive: 3})
	_, err := spaces.NewClient(ts.URL).CreateSpace(context.Background())
	var ce *spaces.CreationError
	if !errors.As(err, &ce) || ce.Kind != spaces.KindAuthorization {
		t.Fatalf("error = %v, want authorization failure", err)
	}
	if ce.Error() != "Not authorized to create space" {
		t.Errorf("message = %q", ce.Error())
	}
}

func TestGetAndList(t *testing.T) {
	t.Parallel()

	_, ts := newTestServer(t, testConfig(5))
	client := spaces.NewClient(ts.URL)
	for range 2 {
		if _, err := client.CreateSpace(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		path       string
		wantStatus int
	}{
		{spaces.CreatePath + "/space-1", http.StatusOK},
		{spaces.CreatePath + "/nope", http.StatusNotFound},
		{spaces.CreatePath, http.StatusOK},
		{"/health", http.StatusOK},
	}
	for _, tt := range tests {
		resp, err := http.Get(ts.URL + tt.path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.wantStatus {
			t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.wantStatus)
		}
	}

	resp, err := http.Get(ts.URL + spaces.CreatePath)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var list []Space
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("list has %d spaces, want 2", len(list))
	}
}

func TestListenAndServe_ShutsDownOnCancel(t *testing.T) {
	t.Parallel()

	s := NewServer(testConfig(1))
	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan net.Addr, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.ListenAndServe(ctx, "127.0.0.1:0", func(a net.Addr) { addrCh <- a })
	}()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case err := <-errCh:
		t.Fatalf("ListenAndServe returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server never became ready")
	}

	resp, err := http.Get("http://" + addr.String() + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
