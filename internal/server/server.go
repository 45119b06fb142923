package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/openconext/teams/internal/authorization"
	"github.com/openconext/teams/internal/config"
	identitydomain "github.com/openconext/teams/internal/identity/domain"
	invitationdomain "github.com/openconext/teams/internal/invitation/domain"
	joinrequestdomain "github.com/openconext/teams/internal/joinrequest/domain"
	membershipdomain "github.com/openconext/teams/internal/membership/domain"
	obsmiddleware "github.com/openconext/teams/internal/observability/logger"
	obsmetrics "github.com/openconext/teams/internal/observability/metrics"
	"github.com/openconext/teams/internal/ratelimit"
	teamdomain "github.com/openconext/teams/internal/team/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	settings       *config.SettingsHolder
	genID          *snowflake.Node
	identitySvc    identitydomain.Service
	teamSvc        teamdomain.Service
	teamRepo       teamdomain.Repository
	membershipSvc  membershipdomain.Service
	invitationSvc  invitationdomain.Service
	joinRequestSvc joinrequestdomain.Service
	authzSvc       authorization.Service
	searchLimiter  *ratelimit.SearchLimiter
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Settings       *config.SettingsHolder
	GenID          *snowflake.Node
	IdentitySvc    identitydomain.Service
	TeamSvc        teamdomain.Service
	TeamRepo       teamdomain.Repository
	MembershipSvc  membershipdomain.Service
	InvitationSvc  invitationdomain.Service
	JoinRequestSvc joinrequestdomain.Service
	AuthzSvc       authorization.Service
	SearchLimiter  *ratelimit.SearchLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		settings:       p.Settings,
		genID:          p.GenID,
		identitySvc:    p.IdentitySvc,
		teamSvc:        p.TeamSvc,
		teamRepo:       p.TeamRepo,
		membershipSvc:  p.MembershipSvc,
		invitationSvc:  p.InvitationSvc,
		joinRequestSvc: p.JoinRequestSvc,
		authzSvc:       p.AuthzSvc,
		searchLimiter:  p.SearchLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerPublicRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.FederatedAuth())

	api.GET("/me", s.Me)
	api.GET("/my-teams", s.MyTeams)
	api.GET("/persons/autocomplete", s.PersonAutocomplete)

	api.POST("/teams", s.CreateTeam)
	api.GET("/teams", s.TeamAutocomplete)
	api.GET("/team-exists", s.TeamExists)
	api.GET("/teams/:id", s.GetTeam)
	api.PUT("/teams/:id", s.UpdateTeam)
	api.DELETE("/teams/:id", s.DeleteTeam)
	api.GET("/teams/:id/external-teams", s.ExternalTeams)

	api.PUT("/teams/:id/members", s.ChangeRole)
	api.DELETE("/teams/:id/members/:urn", s.RemoveMember)

	api.POST("/teams/:id/invitations", s.Invite)
	api.GET("/teams/:id/invitations", s.TeamInvitations)
	api.POST("/resend-invitation", s.ResendInvitation)
	api.GET("/my-invitations/sent", s.SentInvitations)
	api.GET("/my-invitations/received", s.ReceivedInvitations)
	api.GET("/invitations/:token", s.GetInvitation)
	api.POST("/invitations/:token/accept", s.AcceptInvitation)
	api.POST("/invitations/:token/decline", s.DeclineInvitation)

	api.POST("/teams/:id/join-requests", s.CreateJoinRequest)
	api.GET("/teams/:id/join-requests", s.TeamJoinRequests)
	api.POST("/join-requests/:id/approve", s.ApproveJoinRequest)
	api.DELETE("/join-requests/:id", s.RejectJoinRequest)
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/public")

	public.GET("/teams/:token", s.TeamByPublicLink)
}
