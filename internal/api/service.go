package api

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/apsnygame/rpsbot/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const leaderboardSize = 10

// Store is the read-only slice of storage the web surface needs.
type Store interface {
	TopUsersByWins(ctx context.Context, limit int) ([]*models.User, error)
	AllUsers(ctx context.Context) ([]*models.User, error)
}

var leaderboardTemplate = template.Must(template.
	New("leaderboard").
	Funcs(template.FuncMap{
		"rank": func(i int) int { return i + 1 },
	}).
	Parse(`
<h1>🏆 Lider Tablosu</h1>
<table border='1'>
    <tr><th>Sıra</th><th>Kullanıcı</th><th>Galibiyet</th><th>BSC Bakiyesi</th></tr>
    {{- range $i, $u := .Leaders }}
    <tr><td>{{ rank $i }}</td><td>@{{ $u.Username }}</td><td>{{ $u.Wins }}</td><td>{{ $u.BSCBalance }}</td></tr>
    {{- end }}
</table>
<p>Güncellenme: {{ .Now }}</p>
`))

type Service struct {
	storage Store

	now func() time.Time
}

func NewService(storage Store) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
	}
}

func (s *Service) HandleLeaderboard() echo.HandlerFunc {
	return func(c echo.Context) error {
		leaders, err := s.storage.TopUsersByWins(c.Request().Context(), leaderboardSize)
		if err != nil {
			logrus.Errorf("failed to get leaderboard: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get leaderboard"})
		}

		var buf bytes.Buffer
		if err := leaderboardTemplate.Execute(&buf, map[string]any{
			"Leaders": leaders,
			"Now":     s.now().UTC().Format("2006-01-02 15:04 UTC"),
		}); err != nil {
			logrus.Errorf("failed to render leaderboard: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to render leaderboard"})
		}

		return c.HTML(http.StatusOK, buf.String())
	}
}
