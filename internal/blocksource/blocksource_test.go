package blocksource

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tipHash = "00000000000000000001a1ba7900e54b6a4569a6dec179bb1a50e6d0b4a1e0a5"

func TestResolveHeight(t *testing.T) {
	t.Run("resolved block", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/block-height/800000", r.URL.Path)
			fmt.Fprint(w, tipHash+"\n")
		}))
		defer srv.Close()

		res := NewClient(srv.URL, time.Second).ResolveHeight(800000)
		require.Equal(t, Ready, res.State)
		assert.Equal(t, tipHash, res.Hash)
	})

	t.Run("hash is lowercased and trimmed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "  00000000000000000001A1BA7900E54B6A4569A6DEC179BB1A50E6D0B4A1E0A5  ")
		}))
		defer srv.Close()

		res := NewClient(srv.URL, time.Second).ResolveHeight(800000)
		require.Equal(t, Ready, res.State)
		assert.Equal(t, tipHash, res.Hash)
	})

	t.Run("404 means not yet available, not failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Block height out of range", http.StatusNotFound)
		}))
		defer srv.Close()

		res := NewClient(srv.URL, time.Second).ResolveHeight(99999999)
		assert.Equal(t, NotYetAvailable, res.State)
		assert.Nil(t, res.Err)
	})

	t.Run("unexpected status is a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream broken", http.StatusBadGateway)
		}))
		defer srv.Close()

		res := NewClient(srv.URL, time.Second).ResolveHeight(800000)
		require.Equal(t, Failed, res.State)
		assert.Contains(t, res.Err.Error(), "status 502")
	})

	t.Run("malformed body is a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html>not a hash</html>")
		}))
		defer srv.Close()

		res := NewClient(srv.URL, time.Second).ResolveHeight(800000)
		require.Equal(t, Failed, res.State)
		assert.Contains(t, res.Err.Error(), "invalid block hash")
	})

	t.Run("network error is a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused

		res := NewClient(srv.URL, time.Second).ResolveHeight(800000)
		assert.Equal(t, Failed, res.State)
	})
}

func TestBlockInfo(t *testing.T) {
	t.Run("parses height and timestamp", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/block/"+tipHash, r.URL.Path)
			fmt.Fprintf(w, `{"id":%q,"height":800000,"timestamp":1690168629}`, tipHash)
		}))
		defer srv.Close()

		info, err := NewClient(srv.URL, time.Second).BlockInfo(tipHash)
		require.NoError(t, err)
		assert.Equal(t, 800000, info.Height)
		assert.Equal(t, int64(1690168629), info.Timestamp)
	})

	t.Run("missing fields reported", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"id":"x"}`)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second).BlockInfo(tipHash)
		assert.Error(t, err)
	})
}
