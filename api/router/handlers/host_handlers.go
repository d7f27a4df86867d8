package handlers

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"missionreport/database"
	"missionreport/models"
)

func validateHost(h *models.Host) error {
	h.HostName = strings.TrimSpace(h.HostName)
	if h.IPAddress != nil {
		ip := strings.TrimSpace(*h.IPAddress)
		if ip == "" {
			h.IPAddress = nil
		} else if net.ParseIP(ip) == nil {
			return fmt.Errorf("'%s' is not an IP address: %w", ip, models.ErrValidation)
		} else {
			h.IPAddress = &ip
		}
	}
	if h.HostName == "" && h.IPAddress == nil {
		return fmt.Errorf("a host needs a host_name or an ip_address: %w", models.ErrValidation)
	}
	return nil
}

func ListHostsHandler(w http.ResponseWriter, r *http.Request) {
	missionID, err := urlID(r, "missionID")
	if err != nil {
		writeError(w, "Listing hosts", err)
		return
	}
	hosts, err := database.ListHostsByMission(r.Context(), missionID)
	if err != nil {
		writeError(w, "Listing hosts", err)
		return
	}
	writeJSON(w, http.StatusOK, hosts)
}

func CreateHostHandler(w http.ResponseWriter, r *http.Request) {
	missionID, err := urlID(r, "missionID")
	if err != nil {
		writeError(w, "Creating host", err)
		return
	}
	if _, err := database.GetMissionByID(r.Context(), missionID); err != nil {
		writeError(w, "Creating host", err)
		return
	}
	var h models.Host
	if err := decodeJSON(r, &h); err != nil {
		writeError(w, "Creating host", err)
		return
	}
	h.MissionID = missionID
	if err := validateHost(&h); err != nil {
		writeError(w, "Creating host", err)
		return
	}
	id, err := database.CreateHost(r.Context(), h)
	if err != nil {
		writeError(w, "Creating host", err)
		return
	}
	h.ID = id
	writeStatus(w, http.StatusCreated, "Host created", h)
}

// hostOfMission loads the host named in the URL and checks it belongs to the
// mission in the URL.
func hostOfMission(r *http.Request) (models.Host, error) {
	missionID, err := urlID(r, "missionID")
	if err != nil {
		return models.Host{}, err
	}
	hostID, err := urlID(r, "hostID")
	if err != nil {
		return models.Host{}, err
	}
	h, err := database.GetHostByID(r.Context(), hostID)
	if err != nil {
		return h, err
	}
	if h.MissionID != missionID {
		return h, fmt.Errorf("host %d is not part of mission %d: %w", hostID, missionID, models.ErrNotFound)
	}
	return h, nil
}

func UpdateHostHandler(w http.ResponseWriter, r *http.Request) {
	h, err := hostOfMission(r)
	if err != nil {
		writeError(w, "Updating host", err)
		return
	}
	id, missionID := h.ID, h.MissionID
	if err := decodeJSON(r, &h); err != nil {
		writeError(w, "Updating host", err)
		return
	}
	h.ID, h.MissionID = id, missionID
	if err := validateHost(&h); err != nil {
		writeError(w, "Updating host", err)
		return
	}
	if err := database.UpdateHost(r.Context(), h); err != nil {
		writeError(w, "Updating host", err)
		return
	}
	writeStatus(w, http.StatusOK, "Host updated", h)
}

func DeleteHostHandler(w http.ResponseWriter, r *http.Request) {
	h, err := hostOfMission(r)
	if err != nil {
		writeError(w, "Deleting host", err)
		return
	}
	if err := database.DeleteHost(r.Context(), h.ID); err != nil {
		writeError(w, "Deleting host", err)
		return
	}
	writeStatus(w, http.StatusOK, fmt.Sprintf("Host %d deleted", h.ID), map[string]int64{"id": h.ID})
}
