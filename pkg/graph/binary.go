package graph

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Binary cache format, little-endian:
//
//	magic   [4]byte "RSRG"
//	version uint32
//	numNodes uint32
//	numEdges uint32
//	firstOut [numNodes+1]uint32
//	head     [numEdges]uint32
//	weight   [numEdges]uint32
//	nodeLat  [numNodes]float64
//	nodeLon  [numNodes]float64
const (
	binaryMagic   = "RSRG"
	binaryVersion = 1
)

// WriteBinary serializes the graph to the given file path.
func WriteBinary(path string, g *Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)

	if _, err := w.WriteString(binaryMagic); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := writeUint32s(w, []uint32{binaryVersion, g.NumNodes, g.NumEdges}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := writeUint32s(w, g.FirstOut); err != nil {
		return fmt.Errorf("write firstOut: %w", err)
	}
	if err := writeUint32s(w, g.Head); err != nil {
		return fmt.Errorf("write head: %w", err)
	}
	if err := writeUint32s(w, g.Weight); err != nil {
		return fmt.Errorf("write weight: %w", err)
	}
	if err := writeFloat64s(w, g.NodeLat); err != nil {
		return fmt.Errorf("write nodeLat: %w", err)
	}
	if err := writeFloat64s(w, g.NodeLon); err != nil {
		return fmt.Errorf("write nodeLon: %w", err)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// ReadBinary loads a graph previously written by WriteBinary.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 1<<20)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != binaryMagic {
		return nil, fmt.Errorf("bad magic %q (not a road graph cache)", magic)
	}

	header, err := readUint32s(r, 3)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if header[0] != binaryVersion {
		return nil, fmt.Errorf("unsupported cache version %d (want %d)", header[0], binaryVersion)
	}
	numNodes, numEdges := header[1], header[2]

	g := &Graph{NumNodes: numNodes, NumEdges: numEdges}

	if g.FirstOut, err = readUint32s(r, int(numNodes)+1); err != nil {
		return nil, fmt.Errorf("read firstOut: %w", err)
	}
	if g.Head, err = readUint32s(r, int(numEdges)); err != nil {
		return nil, fmt.Errorf("read head: %w", err)
	}
	if g.Weight, err = readUint32s(r, int(numEdges)); err != nil {
		return nil, fmt.Errorf("read weight: %w", err)
	}
	if g.NodeLat, err = readFloat64s(r, int(numNodes)); err != nil {
		return nil, fmt.Errorf("read nodeLat: %w", err)
	}
	if g.NodeLon, err = readFloat64s(r, int(numNodes)); err != nil {
		return nil, fmt.Errorf("read nodeLon: %w", err)
	}

	return g, nil
}

func writeUint32s(w io.Writer, vals []uint32) error {
	buf := make([]byte, 4)
	for _, v := range vals {
		binary.LittleEndian.PutUint32(buf, v)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func readUint32s(r io.Reader, n int) ([]uint32, error) {
	buf := make([]byte, 4)
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		out[i] = binary.LittleEndian.Uint32(buf)
	}
	return out, nil
}

func writeFloat64s(w io.Writer, vals []float64) error {
	buf := make([]byte, 8)
	for _, v := range vals {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

func readFloat64s(r io.Reader, n int) ([]float64, error) {
	buf := make([]byte, 8)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf))
	}
	return out, nil
}
