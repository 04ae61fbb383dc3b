package dashboard

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lumera-stats/lumerawatch/app/dashboard/controller"
	"github.com/lumera-stats/lumerawatch/app/dashboard/types"
)

// NewServer creates the HTTP server of the app.
func NewServer(app *types.App) error {
	ctler := controller.NewController(app)
	router, err := ctler.NewRouter()
	if err != nil {
		return err
	}

	app.Server = &http.Server{
		Addr:              app.Config.Addr,
		Handler:           controller.WithCORS(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.Logger.Info("Starting server", zap.String("addr", app.Config.Addr))

	return nil
}
