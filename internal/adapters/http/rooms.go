package http

import (
	"net/http"

	"github.com/dkeye/WatchParty/internal/app/orch"
	"github.com/dkeye/WatchParty/internal/domain"
	"github.com/gin-gonic/gin"
)

const issueAttempts = 8

type roomsHandler struct {
	orch *orch.Orchestrator
}

type roomURI struct {
	ID string `uri:"id" binding:"required,max=64"`
}

type roomView struct {
	ID        domain.RoomID        `json:"roomId"`
	Playback  domain.PlaybackState `json:"playback"`
	Seq       uint64               `json:"seq"`
	MediaURL  string               `json:"mediaUrl,omitempty"`
	Embedded  bool                 `json:"embeddedMedia"`
	Members   []domain.ConnID      `json:"members"`
	Connected int                  `json:"client_count"`
}

// issue hands out a room id nobody is using right now. The room itself is
// only created by the first join-room.
func (h *roomsHandler) issue(c *gin.Context) {
	for i := 0; i < issueAttempts; i++ {
		id := domain.NewRoomID()
		if _, taken := h.orch.Rooms.Get(id); taken {
			continue
		}
		c.JSON(http.StatusCreated, gin.H{"roomId": id})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not issue room id"})
}

func (h *roomsHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.orch.Rooms.List()})
}

func (h *roomsHandler) get(c *gin.Context) {
	var uri roomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}
	snap, ok := h.orch.Snapshot(domain.RoomID(uri.ID))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, roomView{
		ID:        snap.ID,
		Playback:  snap.Playback,
		Seq:       snap.Seq,
		MediaURL:  snap.Media.URL,
		Embedded:  snap.Media.Data != "",
		Members:   snap.Members,
		Connected: len(snap.Members),
	})
}
