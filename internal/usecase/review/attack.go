package review

import "github.com/notnil/chess"

var (
	knightOffsets = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingOffsets   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	bishopDirs    = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirs      = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

// CountAttackers returns how many pieces of the given color attack target.
// A piece standing on target itself is not counted.
func CountAttackers(b *chess.Board, target chess.Square, by chess.Color) int {
	tf, tr := int(target)%8, int(target)/8
	n := 0

	// Pawns capture diagonally towards the enemy side.
	pawnRank := tr - 1
	if by == chess.Black {
		pawnRank = tr + 1
	}
	for _, df := range [2]int{-1, 1} {
		if pieceAt(b, tf+df, pawnRank, by, chess.Pawn) {
			n++
		}
	}

	for _, o := range knightOffsets {
		if pieceAt(b, tf+o[0], tr+o[1], by, chess.Knight) {
			n++
		}
	}
	for _, o := range kingOffsets {
		if pieceAt(b, tf+o[0], tr+o[1], by, chess.King) {
			n++
		}
	}

	n += slidingAttackers(b, tf, tr, by, bishopDirs, chess.Bishop)
	n += slidingAttackers(b, tf, tr, by, rookDirs, chess.Rook)

	return n
}

func slidingAttackers(b *chess.Board, tf, tr int, by chess.Color, dirs [4][2]int, pt chess.PieceType) int {
	n := 0
	for _, d := range dirs {
		f, r := tf+d[0], tr+d[1]
		for f >= 0 && f < 8 && r >= 0 && r < 8 {
			p := b.Piece(chess.Square(r*8 + f))
			if p != chess.NoPiece {
				if p.Color() == by && (p.Type() == pt || p.Type() == chess.Queen) {
					n++
				}
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return n
}

func pieceAt(b *chess.Board, file, rank int, c chess.Color, pt chess.PieceType) bool {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return false
	}
	p := b.Piece(chess.Square(rank*8 + file))
	return p != chess.NoPiece && p.Color() == c && p.Type() == pt
}
