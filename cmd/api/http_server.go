package main

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/harvicreates/inventory/domain/reservation"
	"github.com/harvicreates/inventory/infra/config"
	"github.com/harvicreates/inventory/infra/events"
	"github.com/harvicreates/inventory/infra/gateways"
	"github.com/harvicreates/inventory/infra/logger"
	"github.com/harvicreates/inventory/infra/loki"
	"github.com/harvicreates/inventory/infra/metrics"
	"github.com/harvicreates/inventory/infra/requestid"
	"github.com/harvicreates/inventory/infra/tracing"
	"github.com/harvicreates/inventory/protocols"
	"github.com/harvicreates/inventory/use_cases/availability"
	"github.com/harvicreates/inventory/use_cases/confirm"
	"github.com/harvicreates/inventory/use_cases/release"
	"github.com/harvicreates/inventory/use_cases/reserve"
	"github.com/harvicreates/inventory/use_cases/status"
)

type ReserveItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

type ReserveRequest struct {
	Items     []ReserveItemRequest `json:"items"`
	SessionID string               `json:"sessionId"`
}

type ReleaseRequest struct {
	ReservationID string `json:"reservationId"`
}

type ConfirmRequest struct {
	ReservationID string         `json:"reservationId"`
	Order         map[string]any `json:"order"`
}

func StartServer() {
	cfg := config.Load()

	lokiWriter := loki.NewWriter(cfg.LokiURL, cfg.ServiceName)
	var log *logger.Logger
	if lokiWriter != nil {
		log = logger.New(cfg.ServiceName, lokiWriter)
		defer lokiWriter.Close()
	} else {
		log = logger.New(cfg.ServiceName, nil)
	}

	if shutdown := tracing.Init(cfg.ServiceName); shutdown != nil {
		defer shutdown()
	}

	store := reservation.NewStore(cfg.ReservationTimeout, gateways.NewClock())

	catalog, db := buildCatalog(cfg, log)

	var idempotencyGateway protocols.IdempotencyGateway
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis ping failed, using in-memory idempotency", "addr", cfg.RedisAddr, "error", err)
			idempotencyGateway = gateways.NewIdempotencyGatewayMemory()
		} else {
			log.Info("confirmation idempotency backed by redis", "addr", cfg.RedisAddr)
			idempotencyGateway = gateways.NewIdempotencyGatewayRedis(rdb)
		}
	} else {
		idempotencyGateway = gateways.NewIdempotencyGatewayMemory()
	}

	var eventPublisher protocols.EventPublisher
	if cfg.KafkaBrokers != "" {
		publisher := events.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		defer publisher.Close()
		eventPublisher = publisher
		log.Info("publishing reservation events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	var orderArchive protocols.OrderArchive
	if cfg.MongoURI != "" {
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Warn("mongo connect failed, order archive disabled", "error", err)
		} else {
			defer client.Disconnect(context.Background())
			orderArchive = gateways.NewOrderArchiveMongo(client, cfg.MongoDatabase)
			log.Info("archiving confirmed orders to mongo", "database", cfg.MongoDatabase)
		}
	}

	checkAvailability := availability.NewCheckAvailability(catalog, store, log)
	reserveUseCase := reserve.NewReserve(checkAvailability, store, eventPublisher, log)
	releaseUseCase := release.NewRelease(store, eventPublisher, log)
	confirmUseCase := confirm.NewConfirm(catalog, store, idempotencyGateway, orderArchive, eventPublisher, log, gateways.NewClock())
	statusUseCase := status.NewGetStatus(store)

	r := gin.Default()
	r.Use(requestid.Middleware())
	r.Use(metrics.Middleware)
	r.Use(tracing.Middleware())

	r.GET("/health", func(c *gin.Context) {
		healthy := "healthy"
		checks := gin.H{"catalog": "up"}
		if db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				healthy = "degraded"
				checks["catalog"] = "down"
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": healthy, "checks": checks})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/availability/:productId", func(c *gin.Context) {
		quantity := int32(1)
		if q := c.Query("quantity"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n <= 0 {
				c.String(http.StatusBadRequest, "quantity must be a positive integer")
				return
			}
			quantity = int32(n)
		}

		result := checkAvailability.Check(c.Request.Context(), c.Param("productId"), quantity)
		c.JSON(http.StatusOK, availabilityResponse(result))
	})

	r.POST("/reserve", func(c *gin.Context) {
		var reserveRequest ReserveRequest
		if err := c.ShouldBindJSON(&reserveRequest); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		items := make([]reserve.Item, 0, len(reserveRequest.Items))
		for _, item := range reserveRequest.Items {
			items = append(items, reserve.Item{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		output := reserveUseCase.Reserve(c.Request.Context(), reserve.Input{
			Items:     items,
			SessionID: reserveRequest.SessionID,
		})
		if !output.Success {
			metrics.ReservationsTotal.WithLabelValues("rejected").Inc()
			c.JSON(http.StatusConflict, gin.H{
				"success":        false,
				"error":          output.Error,
				"availableStock": output.AvailableStock,
			})
			return
		}

		metrics.ReservationsTotal.WithLabelValues("reserved").Inc()
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"reservationId": output.ReservationID,
			"reservedItems": output.ReservedItems,
			"expiresAt":     output.ExpiresAt,
		})
	})

	r.POST("/release", func(c *gin.Context) {
		var releaseRequest ReleaseRequest
		if err := c.ShouldBindJSON(&releaseRequest); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		releaseUseCase.Release(c.Request.Context(), release.Input{ReservationID: releaseRequest.ReservationID})
		metrics.HoldsReleasedTotal.Inc()
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	r.POST("/confirm", func(c *gin.Context) {
		var confirmRequest ConfirmRequest
		if err := c.ShouldBindJSON(&confirmRequest); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}

		output := confirmUseCase.Confirm(c.Request.Context(), confirm.Input{
			ReservationID: confirmRequest.ReservationID,
			Order:         confirmRequest.Order,
		})
		if !output.Success {
			metrics.PurchasesConfirmedTotal.WithLabelValues("failed").Inc()
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": output.Error})
			return
		}

		metrics.PurchasesConfirmedTotal.WithLabelValues("confirmed").Inc()
		c.JSON(http.StatusOK, gin.H{"success": true, "updatedItems": output.UpdatedItems})
	})

	r.GET("/reservations/:reservationId", func(c *gin.Context) {
		output := statusUseCase.Status(c.Param("reservationId"))
		c.JSON(http.StatusOK, gin.H{
			"exists":        output.Exists,
			"itemCount":     output.ItemCount,
			"expiresAt":     output.ExpiresAt,
			"timeRemaining": output.TimeRemaining.Milliseconds(),
			"expired":       output.Expired,
		})
	})

	log.Info("inventory service listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}

// buildCatalog picks the catalog backend: Postgres when PG_DSN is set, the
// remote products API when CATALOG_URL is set, otherwise a seeded in-memory
// catalog for local runs.
func buildCatalog(cfg *config.Config, log *logger.Logger) (protocols.CatalogGateway, *sql.DB) {
	if cfg.PGDSN != "" {
		db, err := sql.Open("postgres", cfg.PGDSN)
		if err == nil {
			err = db.Ping()
		}
		if err != nil {
			log.Warn("postgres unavailable, falling back", "error", err)
		} else {
			log.Info("catalog backed by postgres")
			return gateways.NewCatalogPostgres(db), db
		}
	}

	if cfg.CatalogURL != "" {
		log.Info("catalog backed by products API", "url", cfg.CatalogURL)
		return gateways.NewCatalogHTTP(cfg.CatalogURL, &http.Client{}, gateways.NewSleeper()), nil
	}

	log.Warn("no catalog configured, using seeded in-memory catalog")
	return gateways.NewCatalogMemory(
		protocols.Product{ID: "hc-mug-001", Title: "Speckled Stoneware Mug", StockQuantity: 25},
		protocols.Product{ID: "hc-tote-001", Title: "Canvas Tote Bag", StockQuantity: 40},
	), nil
}

func availabilityResponse(result protocols.Availability) gin.H {
	body := gin.H{
		"available":      result.Available,
		"availableStock": result.AvailableStock,
		"currentStock":   result.CurrentStock,
		"reserved":       result.Reserved,
	}
	if result.Product != nil {
		body["product"] = gin.H{
			"id":            result.Product.ID,
			"title":         result.Product.Title,
			"stockQuantity": result.Product.StockQuantity,
		}
	}
	if result.Error != "" {
		body["error"] = result.Error
	}
	return body
}
