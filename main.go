package main

import (
	"context"
	"errors"
	goflag "flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/girbons/tuttle/internal"
	"github.com/girbons/tuttle/pkg/common"
	"github.com/girbons/tuttle/pkg/handlers"
	"github.com/girbons/tuttle/pkg/model"
	"github.com/girbons/tuttle/pkg/remote"
	"github.com/girbons/tuttle/pkg/sync"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func setupAPIRouter(r *gin.Engine) {
	if !common.DisableGZIP {
		r.Use(gzip.Gzip(gzip.DefaultCompression))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api/v1")
	api.GET("/providers", handlers.ListProviders)
	api.POST("/providers", handlers.CreateProvider)
	api.POST("/users", handlers.CreateUser)

	syncHandler := handlers.NewSyncHandler(remote.DefaultFactory)
	userAPI := api.Group("", handlers.RequireUser())
	{
		userAPI.GET("/tokens", handlers.ListTokens)
		userAPI.POST("/tokens", handlers.UpsertToken)
		userAPI.DELETE("/tokens/:id", handlers.DeleteToken)
		userAPI.GET("/repositories", handlers.ListRepositories)
		userAPI.GET("/deploy-keys", handlers.ListDeployKeys)
		userAPI.POST("/sync", syncHandler.TriggerSync)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	r := gin.New()
	r.Use(gin.Recovery())
	setupAPIRouter(r)

	srv := &http.Server{
		Addr:    ":" + common.Port,
		Handler: r,
	}

	go func() {
		klog.Infof("Listening on :%s", common.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	klog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newSyncCmd() *cobra.Command {
	var username, tokenValue, providerName string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization for a user or token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := sync.TokenRef{Value: tokenValue, Provider: providerName}
			if username != "" {
				user, err := model.GetUserByUsername(username)
				if err != nil {
					return sync.ErrTokenNotFound
				}
				ref.UserID = user.ID
			}
			if ref.Value == "" && ref.UserID == 0 {
				return errors.New("either --username or --token is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), common.SyncTimeout)
			defer cancel()
			return sync.New(model.DB, remote.DefaultFactory).Run(ctx, ref)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "sync the token owned by this user")
	cmd.Flags().StringVar(&tokenValue, "token", "", "sync this token value directly")
	cmd.Flags().StringVar(&providerName, "provider", "", "narrow --username to one provider")
	return cmd
}

func main() {
	klog.InitFlags(goflag.CommandLine)

	rootCmd := &cobra.Command{
		Use:          "tuttle",
		Short:        "Synchronize GitHub repositories and deploy keys per user",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			common.LoadEnvs()
			model.InitDB()
			internal.Bootstrap()
		},
	}
	rootCmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tuttle API server",
		RunE:  runServe,
	}

	rootCmd.AddCommand(serveCmd, newSyncCmd())

	if err := rootCmd.Execute(); err != nil {
		klog.Errorf("%v", err)
		os.Exit(1)
	}
}
