package main

import (
	crand "crypto/rand"
	"flag"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/goccy/go-json"
)

// mock 模拟签到站点的四个接口，便于本地联调：
//
//	FLZT_BASE_URL=http://127.0.0.1:8080 FLZT_EMAIL=a@b.c FLZT_PASSWORD=x go run ./cmd/checkin
func main() {
	addr := flag.String("addr", ":8080", "listen address")
	password := flag.String("password", "", "accepted password; empty accepts any")
	reward := flag.Int64("reward", 10<<20, "reward traffic in bytes granted by a check-in")
	flag.Parse()

	st := &state{
		token:    "mock_token_" + randString(12),
		password: *password,
		reward:   *reward,
		total:    100 << 30,
		used:     12 << 30,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/passport/auth/login", st.login)
	mux.HandleFunc("/api/v1/user/checkIn", st.checkIn)
	mux.HandleFunc("/api/v1/user/info", st.info)

	log.Printf("mock check-in service listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

type state struct {
	mu        sync.Mutex
	token     string
	password  string
	checkedIn bool
	reward    int64
	total     int64
	used      int64
}

func (s *state) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_ = r.ParseForm()
	if r.PostForm.Get("email") == "" || (s.password != "" && r.PostForm.Get("password") != s.password) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "邮箱或密码错误"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"token": randString(8), "auth_data": s.token},
	})
}

func (s *state) checkIn(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != s.token {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "Unauthenticated."})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		if s.checkedIn {
			writeJSON(w, http.StatusOK, map[string]any{"status": "fail", "message": "Already checked in today"})
			return
		}
		s.checkedIn = true
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{"checkin_reward_traffic": strconv.FormatInt(s.reward, 10)},
		})
	case http.MethodPost:
		_ = r.ParseForm()
		mb, err := strconv.ParseInt(r.PostForm.Get("transfer"), 10, 64)
		if err != nil || mb <= 0 || mb<<20 > s.reward {
			writeJSON(w, http.StatusOK, map[string]any{"status": "fail", "message": "invalid transfer amount"})
			return
		}
		s.reward -= mb << 20
		s.total += mb << 20
		writeJSON(w, http.StatusOK, map[string]any{"data": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *state) info(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != s.token {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "Unauthenticated."})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"transfer_enable":        strconv.FormatInt(s.total, 10),
			"used":                   s.used,
			"checkin_reward_traffic": strconv.FormatInt(s.reward, 10),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func randString(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	_, _ = crand.Read(b)
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}
