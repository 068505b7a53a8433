package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-social-api/config"
	"github.com/oksasatya/go-social-api/internal/container"
	"github.com/oksasatya/go-social-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-social-api/internal/router"
	"github.com/oksasatya/go-social-api/pkg/apiclient"
	"github.com/oksasatya/go-social-api/pkg/helpers"
	"github.com/oksasatya/go-social-api/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	helpers.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func TestRunSmoke(t *testing.T) {
	container.Reset()
	t.Cleanup(container.Reset)
	cfg := config.Defaults()
	logger, _ := test.NewNullLogger()
	store := memory.NewStore()
	container.SetConfig(&cfg)
	container.SetLogger(logger)
	container.SetStore(&container.Store{Driver: "memory", Users: store.Users(), Posts: store.Posts()})

	engine := gin.New()
	reg := router.NewRegistry(engine)
	router.InitModules(reg)
	reg.RegisterAll()
	srv := httptest.NewServer(engine)
	defer srv.Close()

	var out bytes.Buffer
	if err := runSmoke(context.Background(), apiclient.New(srv.URL+"/api"), &out); err != nil {
		t.Fatalf("runSmoke() error = %v\n%s", err, out.String())
	}
	if got := strings.Count(out.String(), "ok  "); got != 6 {
		t.Errorf("runSmoke() reported %d steps, want 6:\n%s", got, out.String())
	}
}

func TestReadPasswordLine(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"s3cret\n", "s3cret", false},
		{"s3cret\r\n", "s3cret", false},
		{"no-newline", "no-newline", false},
		{"\n", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := readPasswordLine(strings.NewReader(tc.in))
		if (err != nil) != tc.wantErr {
			t.Errorf("readPasswordLine(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("readPasswordLine(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
