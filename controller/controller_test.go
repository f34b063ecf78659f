package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"files-bot/api"
	"files-bot/models"

	"github.com/cespare/xxhash/v2"
)

type fakeServer struct {
	hits    atomic.Int32
	handler http.HandlerFunc
}

func newController(t *testing.T, handler http.HandlerFunc) (*FormController, *fakeServer) {
	t.Helper()
	fs := &fakeServer{handler: handler}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		if fs.handler != nil {
			fs.handler(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return New(api.NewClient(srv.URL, srv.Client())), fs
}

type memorySaver struct {
	name string
	data []byte
	err  error
}

func (m *memorySaver) Save(_ context.Context, name string, data []byte) error {
	m.name = name
	m.data = data
	return m.err
}

func TestBlankInputsSkipNetwork(t *testing.T) {
	c, fs := newController(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() Result
		want string
	}{
		{"download", func() Result { return c.Download(ctx, "", &memorySaver{}) }, MsgTitleBlank},
		{"details", func() Result { return c.Details(ctx, "") }, MsgTitleBlank},
		{"search", func() Result { return c.Search(ctx, "", "") }, MsgCriteriaNeeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.run().Text; got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if n := fs.hits.Load(); n != 0 {
		t.Errorf("server hit %d times, want 0", n)
	}
}

func TestSearchWithOneCriterionCallsServer(t *testing.T) {
	c, fs := newController(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx := context.Background()

	for _, args := range [][2]string{{"report", ""}, {"", "2024-05-01"}} {
		if got := c.Search(ctx, args[0], args[1]).Text; got != MsgNoResults {
			t.Errorf("Search(%q, %q) = %q, want %q", args[0], args[1], got, MsgNoResults)
		}
	}
	if n := fs.hits.Load(); n != 2 {
		t.Errorf("server hit %d times, want 2", n)
	}
}

func TestSearchRendersMatches(t *testing.T) {
	c, _ := newController(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["x","y"]`))
	})

	want := "Matched Files:\n\nTitle: x\n\nTitle: y"
	res := c.Search(context.Background(), "x", "")
	if res.Text != want {
		t.Errorf("got %q, want %q", res.Text, want)
	}
	if strings.Join(res.Titles, ",") != "x,y" {
		t.Errorf("Titles = %v", res.Titles)
	}
}

func TestSearchServerErrorWithoutBody(t *testing.T) {
	c, _ := newController(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	if got := c.Search(context.Background(), "drop", "").Text; got != "Bad Request" {
		t.Errorf("got %q, want %q", got, "Bad Request")
	}
}

func TestList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", `[]`, MsgNoResults},
		{
			"single",
			`[{"title":"A","description":"d","uploadTime":"t"}]`,
			"List Of Files:\n\nTitle: A\nDescription: d\nUpload Time: t",
		},
		{
			"two",
			`[{"title":"A","description":"d","uploadTime":"t"},{"title":"B","description":"e","uploadTime":"u"}]`,
			"List Of Files:\n\nTitle: A\nDescription: d\nUpload Time: t\n\nTitle: B\nDescription: e\nUpload Time: u",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			if got := c.List(context.Background()).Text; got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDownload(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		wantFile    string
	}{
		{"header filename", `attachment; filename="report.pdf"`, "report.pdf"},
		{"no header", "", "my report"},
		{"unquoted filename", "attachment; filename=report.pdf", "my report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				_, _ = w.Write([]byte("payload"))
			})

			saver := &memorySaver{}
			res := c.Download(context.Background(), "my report", saver)
			if saver.name != tt.wantFile || string(saver.data) != "payload" {
				t.Errorf("saved %q (%q), want %q (payload)", saver.name, saver.data, tt.wantFile)
			}
			if want := "Downloaded File " + tt.wantFile; res.Text != want {
				t.Errorf("text = %q, want %q", res.Text, want)
			}
			if res.FileName != tt.wantFile {
				t.Errorf("FileName = %q, want %q", res.FileName, tt.wantFile)
			}
			if want := fmt.Sprintf("%016x", xxhash.Sum64String("payload")); res.Checksum != want {
				t.Errorf("Checksum = %q, want %q", res.Checksum, want)
			}
		})
	}
}

func TestDownloadServerErrorShowsBody(t *testing.T) {
	c, _ := newController(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("No file with this title"))
	})

	saver := &memorySaver{}
	res := c.Download(context.Background(), "missing", saver)
	if res.Text != "No file with this title" {
		t.Errorf("text = %q", res.Text)
	}
	if saver.name != "" {
		t.Errorf("saver called with %q", saver.name)
	}
}

func TestDownloadSaveFailure(t *testing.T) {
	c, _ := newController(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	})

	res := c.Download(context.Background(), "a", &memorySaver{err: errors.New("disk full")})
	if res.Text != "Failed To Save File a" || res.FileName != "" || res.Checksum != "" {
		t.Errorf("result = %+v", res)
	}
}

func TestDetails(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			"found",
			http.StatusOK,
			`{"title":"A","description":"d","uploadTime":"t"}`,
			"File Details:\n\nTitle: A\nDescription: d\nUpload Time: t",
		},
		{"not found", http.StatusNotFound, "", MsgFileNotFound},
		{"bad request", http.StatusBadRequest, "Invalid input detected", "Invalid input detected"},
		{"bad request, empty body", http.StatusBadRequest, "", "Bad Request"},
		{"unknown status, empty body", 599, "", MsgRequestFailed + " (status 599)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			if got := c.Details(context.Background(), "A").Text; got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUploadShowsBodyForAnyStatus(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusBadRequest} {
		c, _ := newController(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("server says " + http.StatusText(status)))
		})

		res := c.Upload(context.Background(), models.UploadRequest{
			FileName: "a.txt",
			File:     strings.NewReader("hello"),
			Title:    "a",
		})
		if want := "server says " + http.StatusText(status); res.Text != want {
			t.Errorf("status %d: got %q, want %q", status, res.Text, want)
		}
	}
}

func TestTransportAndDecodeFailures(t *testing.T) {
	c, _ := newController(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	if got := c.List(context.Background()).Text; got != MsgRequestFailed {
		t.Errorf("malformed body: got %q, want %q", got, MsgRequestFailed)
	}

	srv := httptest.NewServer(http.NotFoundHandler())
	closed := New(api.NewClient(srv.URL, srv.Client()))
	srv.Close()
	if got := closed.Search(context.Background(), "a", "").Text; got != MsgRequestFailed {
		t.Errorf("closed server: got %q, want %q", got, MsgRequestFailed)
	}
}
