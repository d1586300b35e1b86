package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/plateful/plateful/feed"
	"github.com/plateful/plateful/server"
	"github.com/plateful/plateful/server/middlewares"
	"github.com/plateful/plateful/taste"
	. "github.com/plateful/plateful/utils"
	"github.com/plateful/plateful/utils/dotenv"
	. "github.com/plateful/plateful/utils/flag"
	. "github.com/plateful/plateful/utils/log"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

func cleanup() {
	CloseProfiler()
	CloseTracer()
	Log.Info("api server shutdown")
}

func main() {
	defer cleanup()

	ParseFlags()
	InitLogger()

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect database : ", err)
	}
	DatabaseSetupAndMigration(db)

	// Redis is a fast path only; the service runs without it.
	status, err := GetEngagementStatusStore()
	if err != nil {
		Log.Error("engagement status store unavailable, falling back to DB only: ", err)
		status = nil
	}

	engine := taste.NewEngine(taste.NewGormStore(db), taste.Config{})

	collector := feed.NewCollector(feed.NewGormContentSource(db))
	formatter := feed.NewFormatter(feed.NewGormEngagementLookup(db, status))
	generator := feed.NewGenerator(collector, formatter, feed.GeneratorConfig{})

	middlewares.Setup(middlewares.NewAuthServiceVerifier())

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()

	router.Use(cors.Default())
	router.Use(gintrace.Middleware(*ServiceName))

	router.GET("/api/healthcheck", server.HealthcheckHandler())

	api := router.Group("/api")
	if !*ByPassAuth {
		api.Use(middlewares.JWT())
	}
	api.GET("/feed", server.FeedHandler(generator))
	api.POST("/recommendations/:id/like", server.LikeToggleHandler(db, status))
	api.POST("/recommendations/:id/save", server.SaveToggleHandler(db, status))
	api.POST("/recommendations/:id/reshare", server.ReshareHandler(db))
	api.GET("/taste/alignment/:userId", server.AlignmentHandler(engine))

	// Internal surface for sibling services; the rating-submission pathway
	// must hit this whenever a user's rating history changes.
	internal := router.Group("/internal")
	internal.POST("/taste/invalidate/:userId", server.InvalidateTasteCacheHandler(engine))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"message": "Plateful server - API not found"})
	})

	Log.Info("api server starts up")
	router.Run(":8080")
}
