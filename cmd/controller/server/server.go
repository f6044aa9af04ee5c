package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"station-monitor/cmd/controller/config"
	"station-monitor/cmd/controller/protocol"
	"station-monitor/cmd/controller/registry"
)

type ginResponse struct {
	Status int         `json:"status"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data"`
}

type Controller struct {
	httpServer *gin.Engine
	store      *registry.Store
	handler    *protocol.Handler
	conf       *config.Config
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

func NewController(conf *config.Config, store *registry.Store) (*Controller, error) {
	return &Controller{
		httpServer: gin.Default(),
		store:      store,
		handler:    protocol.NewHandler(store),
		conf:       conf,
	}, nil
}

func (c *Controller) Start() error {
	defer func() {
		if err := recover(); err != nil {
			logrus.Errorf("server runtime failed: %v", err)
		}
	}()

	c.initRouter()

	// blocks here
	if err := c.httpServer.Run(fmt.Sprintf(":%d", c.conf.Http.Port)); err != nil {
		return err
	}
	return nil
}

func (c *Controller) Stop() {
}

func (c *Controller) initRouter() {
	api := c.httpServer.Group("/api")

	user := api.Group("/user")
	{
		user.POST("/login", c.login)
		user.POST("/logout", c.authRequired(), c.logout)
	}

	// device facing HTTP fallback, same handler as the MQTT listener
	iot := api.Group("/iot")
	{
		iot.POST("/heartbeat", c.deviceHeartbeat)
		iot.POST("/config", c.deviceConfigAck)
		iot.POST("/data", c.deviceDataUpload)
	}

	auth := api.Group("", c.authRequired())
	{
		auth.GET("/dashboard/summary", c.dashboardSummary)

		auth.GET("/stations", c.listStations)
		auth.GET("/station/:id", c.getStation)
		auth.POST("/station/:id/request-data", c.requestData)
		auth.POST("/station/:id/request-config", c.requestConfig)

		auth.GET("/readings", c.listReadings)
		auth.GET("/readings/export", c.exportReadings)
		auth.POST("/data/series", c.querySeries)

		auth.GET("/tasklogs", c.listTaskLogs)

		auth.GET("/states", c.listStates)
		auth.GET("/districts", c.listDistricts)
	}

	admin := api.Group("", c.authRequired(), c.adminRequired())
	{
		admin.POST("/station", c.createStation)
		admin.PUT("/station/:id", c.updateStation)
		admin.DELETE("/station/:id", c.deactivateStation)
		admin.POST("/station/:id/activate", c.activateStation)
		admin.PUT("/station/:id/config", c.updateDeviceConfig)
		admin.POST("/station/:id/rotate-token", c.rotateToken)

		admin.GET("/users", c.listUsers)
		admin.POST("/users", c.createUser)
		admin.DELETE("/users/:id", c.deleteUser)
	}
}
