package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vncsmyrnk/organs/internal/adapters/repository"
	"github.com/vncsmyrnk/organs/internal/config"
	"github.com/vncsmyrnk/organs/internal/core/domain"
)

func setupPostgresStores(t *testing.T) *repository.Set {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, testcontainers.TerminateContainer(container))
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	stores, closeStores, err := repository.Open(ctx, config.Store{
		Type:    config.StorePostgres,
		Timeout: 5 * time.Second,
		Postgres: config.PostgresFlags{
			ConnString:  connStr,
			AutoMigrate: true,
		},
	})
	require.NoError(t, err)
	t.Cleanup(closeStores)
	return stores
}

func TestConcurrentVotesPostgres(t *testing.T) {
	stores := setupPostgresStores(t)
	srv := newTestServerWith(t, stores.Polls, stores.Users)

	owner := signUpAndIn(t, srv, "owner")
	poll := createPoll(t, owner, "Concurrent election")
	votePath := fmt.Sprintf("/organs/%s/vote", poll.ID)

	const voters = 10
	clients := make([]*client, voters)
	for i := range clients {
		clients[i] = signUpAndIn(t, srv, fmt.Sprintf("voter%d", i))
	}

	// Each voter sends the same ballot several times at once; only one may
	// count.
	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for _, c := range clients {
		for range 3 {
			wg.Add(1)
			go func(c *client) {
				defer wg.Done()
				req, err := http.NewRequest(http.MethodPost, srv.URL+votePath, strings.NewReader(`{"answer":"Alice"}`))
				if !assert.NoError(t, err) {
					return
				}
				req.Header.Set("Content-Type", "application/json")
				req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: strings.TrimPrefix(c.token, "Bearer ")})
				resp, err := http.DefaultClient.Do(req)
				if !assert.NoError(t, err) {
					return
				}
				resp.Body.Close()

				mu.Lock()
				defer mu.Unlock()
				if resp.StatusCode == http.StatusCreated {
					created++
				} else {
					assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
				}
			}(c)
		}
	}
	wg.Wait()
	assert.Equal(t, voters, created)

	status, raw := owner.do(http.MethodGet, "/organs/"+poll.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, status)
	var fetched domain.Poll
	require.NoError(t, json.Unmarshal(raw, &fetched))
	assert.Equal(t, int64(voters), fetched.Candidates[0].Votes)
	assert.Equal(t, int64(0), fetched.Candidates[1].Votes)
	assert.Len(t, fetched.Voted, voters)
}
