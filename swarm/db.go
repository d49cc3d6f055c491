package swarm

import (
	"fmt"
	"strings"
)

const (
	// TblParticles is the name of the sql database table that contains
	// positions and values for particles for each epoch.
	TblParticles = "swarmparticles"
	// TblParticlesBest is the name of the sql database table that contains
	// each particle's personal best position at each epoch.
	TblParticlesBest = "swarmparticlesbest"
	// TblBest is the name of the sql database table that contains the best
	// current position for the entire swarm at each epoch.
	TblBest = "swarmbest"
)

func (s *Swarm) initdb() error {
	if s.db == nil {
		return nil
	}

	stmts := []string{
		"CREATE TABLE IF NOT EXISTS " + TblParticles + " (particle INTEGER, iter INTEGER, val REAL" + s.xdbsql("define") + ");",
		"CREATE TABLE IF NOT EXISTS " + TblParticlesBest + " (particle INTEGER, iter INTEGER, best REAL" + s.xdbsql("define") + ");",
		"CREATE TABLE IF NOT EXISTS " + TblBest + " (iter INTEGER, val REAL" + s.xdbsql("define") + ");",
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("swarm db init: %w", err)
		}
	}
	return nil
}

func (s *Swarm) xdbsql(op string) string {
	var b strings.Builder
	for i := range s.bounds {
		switch op {
		case "?":
			b.WriteString(",?")
		case "define":
			fmt.Fprintf(&b, ",x%v REAL", i)
		case "x":
			fmt.Fprintf(&b, ",x%v", i)
		default:
			panic("invalid db op " + op)
		}
	}
	return b.String()
}

func pos2iface(pos []float64) []interface{} {
	iface := make([]interface{}, 0, len(pos))
	for _, v := range pos {
		iface = append(iface, v)
	}
	return iface
}

// updateDb records the current epoch.  Epoch 0 is the initial population.
func (s *Swarm) updateDb() (err error) {
	if s.db == nil {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("swarm db update: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			err = fmt.Errorf("swarm db update: %w", err)
		} else {
			err = tx.Commit()
		}
	}()

	s0 := "INSERT INTO " + TblParticles + " (particle,iter,val" + s.xdbsql("x") + ") VALUES (?,?,?" + s.xdbsql("?") + ");"
	s1 := "INSERT INTO " + TblParticlesBest + " (particle,iter,best" + s.xdbsql("x") + ") VALUES (?,?,?" + s.xdbsql("?") + ");"
	for i := 0; i < s.n; i++ {
		args := []interface{}{i, s.epoch, s.vals[i]}
		args = append(args, pos2iface(s.pos.RawRowView(i))...)
		if _, err := tx.Exec(s0, args...); err != nil {
			return err
		}

		args = []interface{}{i, s.epoch, s.pbestvals[i]}
		args = append(args, pos2iface(s.pbest.RawRowView(i))...)
		if _, err := tx.Exec(s1, args...); err != nil {
			return err
		}
	}

	s2 := "INSERT INTO " + TblBest + " (iter,val" + s.xdbsql("x") + ") VALUES (?,?" + s.xdbsql("?") + ");"
	glob := s.Best()
	args := []interface{}{s.epoch, glob.Val}
	args = append(args, pos2iface(glob.Pos())...)
	_, err = tx.Exec(s2, args...)
	return err
}
