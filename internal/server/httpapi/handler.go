package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/gin-gonic/gin"
)

type dreamsQuery struct {
	Public bool      `form:"public"`
	From   time.Time `form:"from"`
	To     time.Time `form:"to"`
	ByDate bool      `form:"by_date"`
	Limit  int       `form:"limit" binding:"min=0"`
}

func (s *Server) respondError(c *gin.Context, err error) {
	code, msg := statusOf(err)
	if code == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	fail(c, code, msg)
}

func (s *Server) getUser(c *gin.Context) {
	u, err := s.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	success(c, u)
}

func (s *Server) queryDreams(c *gin.Context) {
	var q dreamsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	query := models.DreamQuery{
		OwnerID:    c.Param("id"),
		PublicOnly: q.Public,
		From:       q.From,
		To:         q.To,
		Limit:      q.Limit,
	}
	if q.ByDate {
		query.Order = models.OrderDateDesc
	}

	docs, err := s.dreams.Query(c.Request.Context(), callerID(c), query)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if docs == nil {
		docs = []*models.DreamDocument{}
	}
	success(c, docs)
}

func (s *Server) getDream(c *gin.Context) {
	d, err := s.dreams.Get(c.Request.Context(), callerID(c), c.Param("owner"), c.Param("doc"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	success(c, d)
}
