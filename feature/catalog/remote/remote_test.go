package remote

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"catalog-sync/core/storage/mocks"

	"github.com/goccy/go-json"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const marketPayload = `[
  {"uid":"u-1","bsgId":"5449016a4bdc2d6f028b456f","name":"Roubles","shortName":"RUB",
   "tags":["Money"],"price":1,"basePrice":1,"updated":"2024-05-01T10:00:00.000Z",
   "bannedOnFlea":false,"traderName":"Therapist","traderPriceCur":"₽","diff24h":0.5},
  {"uid":"u-2","bsgId":"544fb45d4bdc2dee738b4568","name":"Salewa","shortName":"Salewa",
   "tags":["Meds","Medkits"],"price":null,"updated":""}
]`

func testConfig(base string) Config {
	return Config{
		MarketBaseURL:     base,
		MarketAPIKey:      "k3y",
		TarkovDevEndpoint: base + "/graphql",
		TimeoutSeconds:    5,
	}
}

func TestMarketClient_AllItems(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k3y", r.Header.Get("x-api-key"))
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(marketPayload))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL + "/")
	client := NewMarketClient(cfg, NewTransport(cfg))

	items, err := client.AllItems(context.Background(), ModePvE)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "5449016a4bdc2d6f028b456f", items[0].BsgID)
	require.NotNil(t, items[0].Price)
	assert.Equal(t, 1, *items[0].Price)
	assert.Nil(t, items[1].Price)
	assert.Equal(t, []string{"Meds", "Medkits"}, items[1].Tags)

	_, err = client.AllItems(context.Background(), ModePvP)
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/v1/pve/items/all", "/api/v1/items/all"}, paths)

	_, err = client.AllItems(context.Background(), Mode("arena"))
	assert.Error(t, err)
}

func TestMarketClient_Failures(t *testing.T) {
	status := http.StatusBadGateway
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("upstream down"))
			return
		}
		_, _ = w.Write([]byte(`{"not":"a list"`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	client := NewMarketClient(cfg, NewTransport(cfg))

	_, err := client.AllItems(context.Background(), ModePvE)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Equal(t, "market-pve", statusErr.Dataset)

	status = http.StatusOK
	_, err = client.AllItems(context.Background(), ModePvE)
	assert.ErrorContains(t, err, "malformed payload")
}

func TestDevClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/graphql", r.URL.Path)

		var req graphqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch {
		case strings.Contains(req.Query, "ItemPropertiesKey"):
			_, _ = w.Write([]byte(`{"data":{"items":[
				{"id":"k1","updated":"2024-05-01T10:00:00Z","properties":{"uses":40}},
				null,
				{"id":"k2","updated":"2024-05-01T10:00:00Z","properties":null}]}}`))
		case strings.Contains(req.Query, "sellFor"):
			_, _ = w.Write([]byte(`{"data":{"items":[{"id":"a","updated":"2024-05-01T10:00:00Z",
				"sellFor":[{"vendor":{"name":"Therapist"},"price":1000,"currency":"RUB","priceRUB":1000},
				           {"vendor":{"name":"Peacekeeper"},"price":8,"currency":"USD","priceRUB":1100}]}]}}`))
		case strings.Contains(req.Query, "types"):
			_, _ = w.Write([]byte(`{"errors":[{"message":"rate limited"}],"data":{"items":null}}`))
		default:
			_, _ = w.Write([]byte(`{"data":{"items":[{"id":"a","name":"Salewa","shortName":"Salewa","updated":"2024-05-01T10:00:00Z"}]}}`))
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	client := NewDevClient(cfg, NewTransport(cfg))
	ctx := context.Background()

	keys, err := client.Keys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 2, "null entries dropped")
	uses, ok := keys[0].Uses()
	assert.True(t, ok)
	assert.Equal(t, 40, uses)
	_, ok = keys[1].Uses()
	assert.False(t, ok)

	sales, err := client.SellPrices(ctx)
	require.NoError(t, err)
	require.Len(t, sales[0].SellFor, 2)
	assert.Equal(t, "Peacekeeper", sales[0].SellFor[1].Vendor.Name)
	assert.Equal(t, 1100, sales[0].SellFor[1].PriceRUB)

	items, err := client.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Salewa", items[0].Name)

	_, err = client.ItemTypes(ctx)
	assert.ErrorContains(t, err, "rate limited")
}

func TestTransport_Throttle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RequestsPerSecond = 100
	cfg.Burst = 5
	tr := NewTransport(cfg)
	client := NewMarketClient(cfg, tr)

	_, err := client.AllItems(context.Background(), ModePvE)
	assert.Error(t, err)
	assert.Equal(t, rate.Limit(50), tr.Limit())
}

func TestTransport_ContextCancelled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.RequestsPerSecond = 0.001
	tr := NewTransport(cfg)
	// Drain the single burst token so the next Wait must block.
	require.True(t, tr.limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := NewMarketClient(cfg, tr).AllItems(ctx, ModePvE)
	assert.ErrorContains(t, err, "rate limiter")
}

func TestTransport_Archive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(marketPayload))
	}))
	defer srv.Close()

	store := new(mocks.Client)
	snaps := NewSnapshots(store, "snaps", "/catalog/")
	snaps.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	store.On("PutObject", mock.Anything, "snaps", "catalog/market-pve/20240501T100000.000000000Z.json",
		mock.Anything, int64(len(marketPayload)), mock.Anything).
		Return(minio.UploadInfo{}, nil).Once()

	cfg := testConfig(srv.URL)
	client := NewMarketClient(cfg, NewTransport(cfg, WithSnapshots(snaps, true, false)))

	_, err := client.AllItems(context.Background(), ModePvE)
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestTransport_ArchiveFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(marketPayload))
	}))
	defer srv.Close()

	store := new(mocks.Client)
	store.On("PutObject", mock.Anything, "snaps", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("bucket gone"))

	cfg := testConfig(srv.URL)
	client := NewMarketClient(cfg, NewTransport(cfg, WithSnapshots(NewSnapshots(store, "snaps", ""), true, false)))

	items, err := client.AllItems(context.Background(), ModePvE)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestTransport_Replay(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	store := new(mocks.Client)
	objects := make(chan minio.ObjectInfo, 3)
	objects <- minio.ObjectInfo{Key: "market-pvp/20240501T090000.000000000Z.json"}
	objects <- minio.ObjectInfo{Key: "market-pvp/20240501T100000.000000000Z.json"}
	objects <- minio.ObjectInfo{Key: "market-pvp/notes.txt"}
	close(objects)

	store.On("ListObjects", mock.Anything, "snaps", minio.ListObjectsOptions{Prefix: "market-pvp/", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(objects))
	store.On("GetObject", mock.Anything, "snaps", "market-pvp/20240501T100000.000000000Z.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader([]byte(marketPayload))), nil)

	cfg := testConfig(srv.URL)
	client := NewMarketClient(cfg, NewTransport(cfg, WithSnapshots(NewSnapshots(store, "snaps", ""), false, true)))

	items, err := client.AllItems(context.Background(), ModePvP)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Zero(t, atomic.LoadInt32(&calls), "replay never calls the remote")
}

func TestSnapshots_LatestMissing(t *testing.T) {
	store := new(mocks.Client)
	store.On("ListObjects", mock.Anything, "snaps", mock.Anything).Return(nil)

	_, _, err := NewSnapshots(store, "snaps", "x").Latest(context.Background(), "dev-keys")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}
