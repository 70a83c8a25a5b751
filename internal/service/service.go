package service

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"gitlab.com/dirk.krummacker/people-service/internal/config"
	"gitlab.com/dirk.krummacker/people-service/internal/logging"
	"gitlab.com/dirk.krummacker/people-service/internal/metrics"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
	"gitlab.com/dirk.krummacker/people-service/internal/people"
)

// Options controls the optional parts of the HTTP router.
type Options struct {
	// Logger receives the request log lines and the errors of failed requests.
	Logger zerolog.Logger

	// RequestLogging turns the per-request log lines on.
	RequestLogging bool

	// Metrics, if set, records every request and is exposed under /metrics.
	Metrics *metrics.Metrics
}

// handler binds the HTTP endpoints to the people service.
type handler struct {
	people *people.Service
	log    zerolog.Logger
}

// CreateDatabase opens a database handle with the connection parameters of the configuration.
// The handle connects lazily, so a wrong password or an unreachable host shows up with the first
// query.
func CreateDatabase(conf config.Config) (*sql.DB, error) {
	sqlDB, err := sql.Open("mysql", conf.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return sqlDB, nil
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func SetupHttpRouter(svc *people.Service, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if opts.RequestLogging {
		router.Use(logging.Middleware(opts.Logger))
	}
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	h := &handler{people: svc, log: opts.Logger.With().Str(logging.PACKAGE, "service").Logger()}
	router.GET("/", readRoot)
	router.POST("/people/", h.createPerson)
	router.GET("/people/:id", h.findPersonByID)
	router.PUT("/people/:id", h.updatePersonByID)
	router.DELETE("/people/:id", h.deletePersonByID)
	return router
}

// readRoot responds with a description of the API.
//
// Example REST API call:
//
//	> curl http://localhost:8080/
func readRoot(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{
		"message": "Welcome to CRUD API for Managing Person Records!",
		"info":    "This API allows you to perform CRUD operations on person records. Each person has a first name, last name, email, and age.",
		"endpoints": gin.H{
			"POST /people/":              "Adds a new person to the database.",
			"GET /people/{person_id}":    "Retrieves the details of a person based on the provided person_id.",
			"PUT /people/{person_id}":    "Updates the specified fields of a person record.",
			"DELETE /people/{person_id}": "Deletes the person record corresponding to the person_id.",
		},
	})
}

// createPerson inserts the person specified in the request's JSON into the database. It responds
// with the full person data including the newly assigned id.
//
// Example REST API call:
//
//	> curl http://localhost:8080/people/ --request "POST" --include --header "Content-Type: application/json" --data '{"first_name": "Erika", "last_name": "Mustermann", "email": "erika@example.com", "age": 54}'
func (h *handler) createPerson(c *gin.Context) {
	var newPerson model.NewPerson
	if err := c.ShouldBindJSON(&newPerson); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid JSON"})
		return
	}
	person, err := h.people.Create(c.Request.Context(), newPerson)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, person)
}

// findPersonByID locates the person whose ID value matches the id parameter of the request URL,
// then returns that person as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/people/56
func (h *handler) findPersonByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	person, err := h.people.Get(c.Request.Context(), id)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, person)
}

// updatePersonByID updates the person whose ID value matches the id parameter of the request URL
// with the values specified in the JSON (and only those), and finally responds with the new
// version of the person.
//
// Example REST API calls:
//
//	> curl http://localhost:8080/people/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"age": 31}'
//	> curl http://localhost:8080/people/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"email": "rudi@example.com"}'
func (h *handler) updatePersonByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var patch model.PersonPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid JSON"})
		return
	}
	person, err := h.people.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.respondWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, person)
}

// deletePersonByID deletes the person whose ID value matches the id parameter of the request URL
// from the database.
//
// Example REST API call:
//
//	> curl http://localhost:8080/people/56 --request "DELETE"
func (h *handler) deletePersonByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.people.Delete(c.Request.Context(), id); err != nil {
		h.respondWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"detail": "Person deleted"})
}

// parseID reads the id parameter of the request URL. If it is not an integer, the request is
// answered and false is returned.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": "id must be an integer"})
		return 0, false
	}
	return id, true
}

// respondWithError translates an error of the people service into an HTTP response.
func (h *handler) respondWithError(c *gin.Context, err error) {
	var validationErr *people.ValidationError
	var conflictErr *people.ConflictError
	var notFoundErr *people.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": validationErr.Message})
	case errors.As(err, &conflictErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": conflictErr.Error()})
	case errors.As(err, &notFoundErr):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": notFoundErr.Error()})
	default:
		h.log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.Request.URL.Path).Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}
