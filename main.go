package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"google.golang.org/api/idtoken"

	"breakout/solver"
)

//go:embed schema.sql
var schema string

func main() {
	for _, key := range []string{"PGCONN", "CLIENT_ID", "CLIENT_SECRET", "ADMINS"} {
		if os.Getenv(key) == "" {
			log.Fatalf("%s environment variable is required", key)
		}
	}

	db, err := sql.Open("postgres", os.Getenv("PGCONN"))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	log.Println("connected to database")

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	http.HandleFunc("POST /auth/google/callback", handleGoogleCallback)
	http.HandleFunc("GET /api/admin/check", handleAdminCheck)
	http.HandleFunc("GET /api/cohorts", handleListCohorts(db))
	http.HandleFunc("POST /api/cohorts", handleCreateCohort(db))
	http.HandleFunc("DELETE /api/cohorts/{cohortID}", handleDeleteCohort(db))
	http.HandleFunc("POST /api/cohorts/{cohortID}/admins", handleAddCohortAdmin(db))
	http.HandleFunc("DELETE /api/cohorts/{cohortID}/admins/{adminID}", handleRemoveCohortAdmin(db))
	http.HandleFunc("GET /api/cohorts/{cohortID}", handleGetCohort(db))
	http.HandleFunc("PATCH /api/cohorts/{cohortID}", handleUpdateCohort(db))
	http.HandleFunc("GET /api/cohorts/{cohortID}/students", handleListStudents(db))
	http.HandleFunc("POST /api/cohorts/{cohortID}/students", handleCreateStudent(db))
	http.HandleFunc("DELETE /api/cohorts/{cohortID}/students/{studentID}", handleDeleteStudent(db))
	http.HandleFunc("GET /api/cohorts/{cohortID}/ratings", handleListRatings(db))
	http.HandleFunc("POST /api/cohorts/{cohortID}/ratings", handleUpsertRating(db))
	http.HandleFunc("DELETE /api/cohorts/{cohortID}/ratings/{ratingID}", handleDeleteRating(db))
	http.HandleFunc("POST /api/cohorts/{cohortID}/solve", handleSolve(db))
	http.HandleFunc("GET /api/cohorts/{cohortID}/assignment", handleGetAssignment(db))
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			http.Error(w, "db unhealthy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	})

	log.Println("listening on :8080")
	log.Fatal(http.ListenAndServe(":8080", nil))
}

func handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	credential := r.FormValue("credential")
	if credential == "" {
		http.Error(w, "missing credential", http.StatusBadRequest)
		return
	}

	payload, err := idtoken.Validate(context.Background(), credential, os.Getenv("CLIENT_ID"))
	if err != nil {
		log.Println("failed to validate token:", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	email := payload.Claims["email"].(string)

	profile := map[string]any{
		"email":   email,
		"name":    payload.Claims["name"],
		"picture": payload.Claims["picture"],
		"token":   signEmail(email),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

func signEmail(email string) string {
	h := hmac.New(sha256.New, []byte(os.Getenv("CLIENT_SECRET")))
	h.Write([]byte(email))
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return base64.RawURLEncoding.EncodeToString([]byte(email)) + "." + sig
}

func authorize(r *http.Request) (string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return "", false
	}
	emailBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", false
	}
	email := string(emailBytes)
	if signEmail(email) != token {
		return "", false
	}
	return email, true
}

func isAdmin(email string) bool {
	return slices.ContainsFunc(strings.Split(os.Getenv("ADMINS"), ","), func(a string) bool {
		return strings.TrimSpace(a) == email
	})
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := authorize(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	if !isAdmin(email) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return email, true
}

func isCohortAdmin(db *sql.DB, email string, cohortID int64) bool {
	var exists bool
	db.QueryRow("SELECT EXISTS(SELECT 1 FROM cohort_admins WHERE cohort_id = $1 AND email = $2)", cohortID, email).Scan(&exists)
	return exists
}

func requireCohortAdmin(db *sql.DB, w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	email, ok := authorize(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", 0, false
	}
	cohortID, err := strconv.ParseInt(r.PathValue("cohortID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid cohort ID", http.StatusBadRequest)
		return "", 0, false
	}
	if !isAdmin(email) && !isCohortAdmin(db, email, cohortID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", 0, false
	}
	return email, cohortID, true
}

func cohortRole(db *sql.DB, email string, cohortID int64) (string, []int64) {
	if isAdmin(email) || isCohortAdmin(db, email, cohortID) {
		return "admin", nil
	}
	var studentIDs []int64
	rows, _ := db.Query("SELECT id FROM students WHERE cohort_id = $1 AND email = $2", cohortID, email)
	if rows != nil {
		defer rows.Close()
		for rows.Next() {
			var id int64
			rows.Scan(&id)
			studentIDs = append(studentIDs, id)
		}
	}
	if len(studentIDs) > 0 {
		return "student", studentIDs
	}
	return "", nil
}

func requireCohortMember(db *sql.DB, w http.ResponseWriter, r *http.Request) (string, int64, string, []int64, bool) {
	email, ok := authorize(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", 0, "", nil, false
	}
	cohortID, err := strconv.ParseInt(r.PathValue("cohortID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid cohort ID", http.StatusBadRequest)
		return "", 0, "", nil, false
	}
	role, studentIDs := cohortRole(db, email, cohortID)
	if role == "" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", 0, "", nil, false
	}
	return email, cohortID, role, studentIDs, true
}

func handleAdminCheck(w http.ResponseWriter, r *http.Request) {
	email, ok := authorize(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"admin": isAdmin(email)})
}

func handleListCohorts(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		rows, err := db.Query(`
			SELECT c.id, c.name, c.stress_budget, COALESCE(
				json_agg(json_build_object('id', ca.id, 'email', ca.email)) FILTER (WHERE ca.id IS NOT NULL),
				'[]'
			)
			FROM cohorts c
			LEFT JOIN cohort_admins ca ON ca.cohort_id = c.id
			GROUP BY c.id, c.name, c.stress_budget
			ORDER BY c.id`)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type cohortAdmin struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		}
		type cohort struct {
			ID           int64         `json:"id"`
			Name         string        `json:"name"`
			StressBudget float64       `json:"stress_budget"`
			Admins       []cohortAdmin `json:"admins"`
		}

		var cohorts []cohort
		for rows.Next() {
			var c cohort
			var adminsJSON string
			if err := rows.Scan(&c.ID, &c.Name, &c.StressBudget, &adminsJSON); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			json.Unmarshal([]byte(adminsJSON), &c.Admins)
			cohorts = append(cohorts, c)
		}
		if cohorts == nil {
			cohorts = []cohort{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cohorts)
	}
}

func handleCreateCohort(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}
		var id int64
		err := db.QueryRow("INSERT INTO cohorts (name) VALUES ($1) RETURNING id", body.Name).Scan(&id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": id, "name": body.Name})
	}
}

func handleDeleteCohort(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		cohortID, err := strconv.ParseInt(r.PathValue("cohortID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid cohort ID", http.StatusBadRequest)
			return
		}
		result, err := db.Exec("DELETE FROM cohorts WHERE id = $1", cohortID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "cohort not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleAddCohortAdmin(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		cohortID, err := strconv.ParseInt(r.PathValue("cohortID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid cohort ID", http.StatusBadRequest)
			return
		}
		var body struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
			http.Error(w, "email is required", http.StatusBadRequest)
			return
		}
		var id int64
		err = db.QueryRow("INSERT INTO cohort_admins (cohort_id, email) VALUES ($1, $2) RETURNING id", cohortID, body.Email).Scan(&id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": id, "email": body.Email})
	}
}

func handleRemoveCohortAdmin(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireAdmin(w, r); !ok {
			return
		}
		adminID, err := strconv.ParseInt(r.PathValue("adminID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid admin ID", http.StatusBadRequest)
			return
		}
		result, err := db.Exec("DELETE FROM cohort_admins WHERE id = $1", adminID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "cohort admin not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleGetCohort(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cohortID, role, _, ok := requireCohortMember(db, w, r)
		if !ok {
			return
		}
		var name string
		var stressBudget float64
		err := db.QueryRow("SELECT name, stress_budget FROM cohorts WHERE id = $1", cohortID).Scan(&name, &stressBudget)
		if err != nil {
			http.Error(w, "cohort not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": cohortID, "name": name, "stress_budget": stressBudget, "role": role})
	}
}

func handleUpdateCohort(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cohortID, ok := requireCohortAdmin(db, w, r)
		if !ok {
			return
		}
		var body struct {
			StressBudget *float64 `json:"stress_budget"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if body.StressBudget != nil {
			if *body.StressBudget <= 0 || *body.StressBudget >= 100 {
				http.Error(w, "stress_budget must be between 0 and 100 exclusive", http.StatusBadRequest)
				return
			}
			if _, err := db.Exec("UPDATE cohorts SET stress_budget = $1 WHERE id = $2", *body.StressBudget, cohortID); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListStudents(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cohortID, role, _, ok := requireCohortMember(db, w, r)
		if !ok {
			return
		}
		rows, err := db.Query("SELECT id, name, email FROM students WHERE cohort_id = $1 ORDER BY name", cohortID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type student struct {
			ID    int64  `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email,omitempty"`
		}
		var students []student
		for rows.Next() {
			var s student
			if err := rows.Scan(&s.ID, &s.Name, &s.Email); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if role != "admin" {
				s.Email = ""
			}
			students = append(students, s)
		}
		if students == nil {
			students = []student{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(students)
	}
}

func handleCreateStudent(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cohortID, ok := requireCohortAdmin(db, w, r)
		if !ok {
			return
		}
		var body struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" || body.Email == "" {
			http.Error(w, "name and email are required", http.StatusBadRequest)
			return
		}
		var id int64
		err := db.QueryRow("INSERT INTO students (cohort_id, name, email) VALUES ($1, $2, $3) RETURNING id", cohortID, body.Name, body.Email).Scan(&id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": id, "name": body.Name, "email": body.Email})
	}
}

func handleDeleteStudent(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cohortID, ok := requireCohortAdmin(db, w, r)
		if !ok {
			return
		}
		studentID, err := strconv.ParseInt(r.PathValue("studentID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid student ID", http.StatusBadRequest)
			return
		}
		result, err := db.Exec("DELETE FROM students WHERE id = $1 AND cohort_id = $2", studentID, cohortID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "student not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleListRatings(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cohortID, role, myStudentIDs, ok := requireCohortMember(db, w, r)
		if !ok {
			return
		}
		var query string
		var args []any
		if role == "admin" {
			query = `SELECT rt.id, rt.student_a_id, sa.name, rt.student_b_id, sb.name, rt.happiness, rt.stress
				FROM ratings rt
				JOIN students sa ON sa.id = rt.student_a_id
				JOIN students sb ON sb.id = rt.student_b_id
				WHERE sa.cohort_id = $1
				ORDER BY rt.id`
			args = []any{cohortID}
		} else {
			query = `SELECT rt.id, rt.student_a_id, sa.name, rt.student_b_id, sb.name, rt.happiness, rt.stress
				FROM ratings rt
				JOIN students sa ON sa.id = rt.student_a_id
				JOIN students sb ON sb.id = rt.student_b_id
				WHERE sa.cohort_id = $1 AND rt.student_a_id = ANY($2)
				ORDER BY rt.id`
			args = []any{cohortID, pq.Array(myStudentIDs)}
		}
		rows, err := db.Query(query, args...)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		type rating struct {
			ID           int64   `json:"id"`
			StudentAID   int64   `json:"student_a_id"`
			StudentAName string  `json:"student_a_name"`
			StudentBID   int64   `json:"student_b_id"`
			StudentBName string  `json:"student_b_name"`
			Happiness    float64 `json:"happiness"`
			Stress       float64 `json:"stress"`
		}
		var ratings []rating
		for rows.Next() {
			var rt rating
			if err := rows.Scan(&rt.ID, &rt.StudentAID, &rt.StudentAName, &rt.StudentBID, &rt.StudentBName, &rt.Happiness, &rt.Stress); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			ratings = append(ratings, rt)
		}
		if ratings == nil {
			ratings = []rating{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ratings)
	}
}

func handleUpsertRating(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cohortID, role, myStudentIDs, ok := requireCohortMember(db, w, r)
		if !ok {
			return
		}
		var body struct {
			StudentAID int64   `json:"student_a_id"`
			StudentBID int64   `json:"student_b_id"`
			Happiness  float64 `json:"happiness"`
			Stress     float64 `json:"stress"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if body.StudentAID == body.StudentBID {
			http.Error(w, "students must be different", http.StatusBadRequest)
			return
		}
		if body.Happiness < 0 || body.Happiness >= 100 || body.Stress < 0 || body.Stress >= 100 {
			http.Error(w, "happiness and stress must be in [0, 100)", http.StatusBadRequest)
			return
		}
		if role != "admin" && !slices.Contains(myStudentIDs, body.StudentAID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		var id int64
		err := db.QueryRow(`
			INSERT INTO ratings (student_a_id, student_b_id, happiness, stress)
			SELECT $1, $2, $3, $4
			FROM students sa
			JOIN students sb ON sb.id = $2 AND sb.cohort_id = $5
			WHERE sa.id = $1 AND sa.cohort_id = $5
			ON CONFLICT (student_a_id, student_b_id) DO UPDATE SET happiness = EXCLUDED.happiness, stress = EXCLUDED.stress
			RETURNING id`, body.StudentAID, body.StudentBID, body.Happiness, body.Stress, cohortID).Scan(&id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": id})
	}
}

func handleDeleteRating(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cohortID, role, myStudentIDs, ok := requireCohortMember(db, w, r)
		if !ok {
			return
		}
		ratingID, err := strconv.ParseInt(r.PathValue("ratingID"), 10, 64)
		if err != nil {
			http.Error(w, "invalid rating ID", http.StatusBadRequest)
			return
		}
		var query string
		var args []any
		if role == "admin" {
			query = `DELETE FROM ratings WHERE id = $1
				AND student_a_id IN (SELECT id FROM students WHERE cohort_id = $2)`
			args = []any{ratingID, cohortID}
		} else {
			query = `DELETE FROM ratings WHERE id = $1 AND student_a_id = ANY($2)`
			args = []any{ratingID, pq.Array(myStudentIDs)}
		}
		result, err := db.Exec(query, args...)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := result.RowsAffected(); n == 0 {
			http.Error(w, "rating not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// buildGraph averages the directed ratings of each pair into one symmetric
// edge; unrated pairs stay at zero happiness and zero stress, so the solver
// always sees a complete graph.
func buildGraph(db *sql.DB, cohortID int64) ([]int64, map[int64]string, *solver.Graph, error) {
	rows, err := db.Query("SELECT id, name FROM students WHERE cohort_id = $1 ORDER BY id", cohortID)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()

	var studentIDs []int64
	studentName := map[int64]string{}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, nil, nil, err
		}
		studentIDs = append(studentIDs, id)
		studentName[id] = name
	}

	idx := map[int64]int{}
	for i, id := range studentIDs {
		idx[id] = i
	}
	n := len(studentIDs)
	g := solver.NewGraph(n)

	rrows, err := db.Query(`
		SELECT rt.student_a_id, rt.student_b_id, rt.happiness, rt.stress
		FROM ratings rt
		JOIN students sa ON sa.id = rt.student_a_id
		WHERE sa.cohort_id = $1 AND rt.student_b_id = ANY($2)`, cohortID, pq.Array(studentIDs))
	if err != nil {
		return nil, nil, nil, err
	}
	defer rrows.Close()

	type pairKey struct{ a, b int }
	type pairSum struct {
		happiness float64
		stress    float64
		count     int
	}
	sums := map[pairKey]*pairSum{}
	for rrows.Next() {
		var aID, bID int64
		var happiness, stress float64
		if err := rrows.Scan(&aID, &bID, &happiness, &stress); err != nil {
			return nil, nil, nil, err
		}
		a, b := idx[aID], idx[bID]
		if a > b {
			a, b = b, a
		}
		pk := pairKey{a, b}
		if sums[pk] == nil {
			sums[pk] = &pairSum{}
		}
		sums[pk].happiness += happiness
		sums[pk].stress += stress
		sums[pk].count++
	}
	for pk, sum := range sums {
		g.SetEdge(pk.a, pk.b, sum.happiness/float64(sum.count), sum.stress/float64(sum.count))
	}
	return studentIDs, studentName, g, nil
}

func handleSolve(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cohortID, ok := requireCohortAdmin(db, w, r)
		if !ok {
			return
		}

		var stressBudget float64
		if err := db.QueryRow("SELECT stress_budget FROM cohorts WHERE id = $1", cohortID).Scan(&stressBudget); err != nil {
			http.Error(w, "cohort not found", http.StatusNotFound)
			return
		}

		var body struct {
			Algorithm string `json:"algorithm"`
			Seed      *int64 `json:"seed"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Algorithm == "" {
			body.Algorithm = "greedy"
		}
		seed := int64(42)
		if body.Seed != nil {
			seed = *body.Seed
		}

		studentIDs, studentName, g, err := buildGraph(db, cohortID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if len(studentIDs) == 0 {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"rooms": []any{}, "room_count": 0})
			return
		}

		rng := rand.New(rand.NewSource(seed))
		var assignment []int
		var roomCount int
		switch body.Algorithm {
		case "greedy":
			assignment, roomCount = solver.SolveGreedy(g, stressBudget, solver.DefaultGreedyParams, rng)
		case "sa":
			assignment, roomCount = solver.SolveSA(g, stressBudget, solver.DefaultSAParams, rng)
		case "genetic":
			assignment, roomCount = solver.SolveGA(g, stressBudget, solver.DefaultGAParams, rng)
		default:
			http.Error(w, "unknown algorithm (greedy, sa, genetic)", http.StatusBadRequest)
			return
		}

		tx, err := db.Begin()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()
		if _, err := tx.Exec("DELETE FROM assignments WHERE cohort_id = $1", cohortID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for i, room := range assignment {
			if _, err := tx.Exec("INSERT INTO assignments (cohort_id, student_id, room) VALUES ($1, $2, $3)",
				cohortID, studentIDs[i], room); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"algorithm":  body.Algorithm,
			"rooms":      roomsResponse(assignment, studentIDs, studentName),
			"room_count": roomCount,
			"happiness":  solver.TotalHappiness(g, assignment),
			"valid":      solver.IsValid(g, assignment, stressBudget),
		})
	}
}

type roomMember struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func roomsResponse(assignment []int, studentIDs []int64, studentName map[int64]string) [][]roomMember {
	roomMap := map[int][]roomMember{}
	for i, room := range assignment {
		sid := studentIDs[i]
		roomMap[room] = append(roomMap[room], roomMember{ID: sid, Name: studentName[sid]})
	}
	rooms := make([][]roomMember, 0, len(roomMap))
	for _, members := range roomMap {
		slices.SortFunc(members, func(a, b roomMember) int { return strings.Compare(a.Name, b.Name) })
		rooms = append(rooms, members)
	}
	slices.SortFunc(rooms, func(a, b []roomMember) int { return strings.Compare(a[0].Name, b[0].Name) })
	return rooms
}

func handleGetAssignment(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, cohortID, _, _, ok := requireCohortMember(db, w, r)
		if !ok {
			return
		}
		rows, err := db.Query(`
			SELECT a.student_id, s.name, a.room
			FROM assignments a
			JOIN students s ON s.id = a.student_id
			WHERE a.cohort_id = $1
			ORDER BY a.room, s.name`, cohortID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		roomMap := map[int][]roomMember{}
		for rows.Next() {
			var sid int64
			var name string
			var room int
			if err := rows.Scan(&sid, &name, &room); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			roomMap[room] = append(roomMap[room], roomMember{ID: sid, Name: name})
		}
		rooms := make([][]roomMember, 0, len(roomMap))
		for _, members := range roomMap {
			rooms = append(rooms, members)
		}
		slices.SortFunc(rooms, func(a, b []roomMember) int { return strings.Compare(a[0].Name, b[0].Name) })
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"rooms": rooms, "room_count": len(rooms)})
	}
}
