package torrent

import (
	"crypto/sha1"
	"fmt"
	"math/big"

	"github.com/ParamvirSran/gobencode/internal/bencode"
	"github.com/ParamvirSran/gobencode/internal/decode"
)

const (
	_keyAnnounce     = "announce"
	_keyAnnounceList = "announce-list"
	_keyInfo         = "info"
	_keyPieceLength  = "piece length"
	_keyPieces       = "pieces"
	_keyLength       = "length"
	_keyFiles        = "files"
	_keyName         = "name"
	_keyPath         = "path"
	_keyMd5sum       = "md5sum"
	_keyComment      = "comment"
	_keyCreatedBy    = "created by"
	_keyCreationDate = "creation date"
	_keyPrivate      = "private"
)

// Torrent is the metainfo of a .torrent file.
type Torrent struct {
	Announce     string
	AnnounceList [][]string
	CreationDate int64
	Comment      string
	CreatedBy    string
	Info         *InfoDictionary

	// InfoHash is the SHA-1 of the info dictionary as it appeared in the
	// source, including keys InfoDictionary does not model.
	InfoHash [20]byte
}

type InfoDictionary struct {
	PieceLength int64
	Pieces      []byte
	Private     bool
	Name        string
	Length      int64
	Files       []File
}

type File struct {
	Length int64
	Md5sum string
	Path   []string
}

// Value returns info as a bencode dictionary. A single-file torrent carries
// "length", a multi-file torrent "files".
func (info *InfoDictionary) Value() bencode.Dictionary {
	dict := bencode.Dictionary{
		_keyName:        bencode.ByteString(info.Name),
		_keyPieceLength: bencode.Int(info.PieceLength),
		_keyPieces:      bencode.ByteString(info.Pieces),
	}
	if info.Private {
		dict[_keyPrivate] = bencode.Int(1)
	}

	if len(info.Files) == 0 {
		dict[_keyLength] = bencode.Int(info.Length)
		return dict
	}

	files := make(bencode.List, 0, len(info.Files))
	for _, file := range info.Files {
		path := make(bencode.List, len(file.Path))
		for i, p := range file.Path {
			path[i] = bencode.ByteString(p)
		}
		fileDict := bencode.Dictionary{
			_keyLength: bencode.Int(file.Length),
			_keyPath:   path,
		}
		if file.Md5sum != "" {
			fileDict[_keyMd5sum] = bencode.ByteString(file.Md5sum)
		}
		files = append(files, fileDict)
	}
	dict[_keyFiles] = files
	return dict
}

// Hash returns the info hash of info.
func (info *InfoDictionary) Hash() ([20]byte, error) {
	encoded, err := bencode.Marshal(info.Value())
	if err != nil {
		return [20]byte{}, fmt.Errorf("failed to encode info dictionary: %w", err)
	}
	return sha1.Sum(encoded), nil
}

// InfoHash hashes a decoded info dictionary without interpreting it, so keys
// unknown to InfoDictionary still contribute. Lists and dictionaries keep the
// kind they were decoded as, which makes the hash match the source bytes.
func InfoHash(info map[string]any) ([20]byte, error) {
	dict, err := typedValue(info)
	if err != nil {
		return [20]byte{}, fmt.Errorf("failed to encode info dictionary: %w", err)
	}
	encoded, err := bencode.Marshal(dict)
	if err != nil {
		return [20]byte{}, fmt.Errorf("failed to encode info dictionary: %w", err)
	}
	return sha1.Sum(encoded), nil
}

// typedValue rebuilds a tree produced by decode as bencode values.
func typedValue(data any) (bencode.Value, error) {
	switch v := data.(type) {
	case int64:
		return bencode.Int(v), nil
	case *big.Int:
		return bencode.BigInt(v), nil
	case string:
		return bencode.ByteString(v), nil
	case []any:
		list := make(bencode.List, len(v))
		for i, item := range v {
			val, err := typedValue(item)
			if err != nil {
				return nil, err
			}
			list[i] = val
		}
		return list, nil
	case map[string]any:
		dict := make(bencode.Dictionary, len(v))
		for key, item := range v {
			val, err := typedValue(item)
			if err != nil {
				return nil, err
			}
			dict[key] = val
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("%w: %T", bencode.ErrUnsupportedType, data)
	}
}

// ParseMetainfo decodes a .torrent document and computes its info hash.
func ParseMetainfo(content []byte) (*Torrent, error) {
	data, err := decode.DecodeBytes(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode torrent file: %w", err)
	}

	torrentDict, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid torrent file format: expected a dictionary but got %T", data)
	}

	torrent := &Torrent{}
	if err := parseAnnounce(torrentDict, torrent); err != nil {
		return nil, err
	}

	infoDict, ok := torrentDict[_keyInfo].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("info dictionary missing or of incorrect type")
	}
	torrent.Info, err = ParseInfo(infoDict)
	if err != nil {
		return nil, fmt.Errorf("failed to parse info dictionary: %w", err)
	}
	torrent.InfoHash, err = InfoHash(infoDict)
	if err != nil {
		return nil, err
	}

	// Optional Fields
	if comment, ok := torrentDict[_keyComment].(string); ok {
		torrent.Comment = comment
	}
	if createdBy, ok := torrentDict[_keyCreatedBy].(string); ok {
		torrent.CreatedBy = createdBy
	}
	if creationDate, ok := torrentDict[_keyCreationDate].(int64); ok {
		torrent.CreationDate = creationDate
	}

	return torrent, nil
}

// parseAnnounce parses the "announce" and "announce-list" fields
func parseAnnounce(torrentDict map[string]any, torrent *Torrent) error {
	announce, ok := torrentDict[_keyAnnounce].(string)
	if !ok {
		return fmt.Errorf("%s URL missing or not a string", _keyAnnounce)
	}
	torrent.Announce = announce

	announceList, ok := torrentDict[_keyAnnounceList].([]any)
	if !ok {
		return nil
	}
	for _, tier := range announceList {
		urlList, ok := tier.([]any)
		if !ok {
			return fmt.Errorf("%s tier is not a list of URLs: %T", _keyAnnounceList, tier)
		}
		urls := make([]string, 0, len(urlList))
		for _, url := range urlList {
			urlString, ok := url.(string)
			if !ok {
				return fmt.Errorf("%s contains non-string URL: %v", _keyAnnounceList, url)
			}
			urls = append(urls, urlString)
		}
		torrent.AnnounceList = append(torrent.AnnounceList, urls)
	}
	return nil
}

// ParseInfo reads a decoded info dictionary.
func ParseInfo(infoDict map[string]any) (*InfoDictionary, error) {
	info := &InfoDictionary{}

	name, ok := infoDict[_keyName].(string)
	if !ok {
		return nil, fmt.Errorf("%s field missing or not a string", _keyName)
	}
	info.Name = name

	pieceLength, ok := infoDict[_keyPieceLength].(int64)
	if !ok || pieceLength <= 0 {
		return nil, fmt.Errorf("%s field missing or of incorrect type", _keyPieceLength)
	}
	info.PieceLength = pieceLength

	pieces, ok := infoDict[_keyPieces].(string)
	if !ok || len(pieces)%sha1.Size != 0 {
		return nil, fmt.Errorf("%s field missing or not a multiple of %d bytes", _keyPieces, sha1.Size)
	}
	info.Pieces = []byte(pieces)

	if private, ok := infoDict[_keyPrivate].(int64); ok {
		info.Private = private == 1
	}

	if err := parseLengthOrFiles(infoDict, info); err != nil {
		return nil, err
	}
	return info, nil
}

// parseLengthOrFiles parses the "length" or "files" field
func parseLengthOrFiles(infoDict map[string]any, info *InfoDictionary) error {
	if length, ok := infoDict[_keyLength].(int64); ok {
		info.Length = length
		return nil
	}

	files, ok := infoDict[_keyFiles].([]any)
	if !ok {
		return fmt.Errorf("neither %s nor %s field found. Torrent may be missing fields", _keyLength, _keyFiles)
	}
	for _, file := range files {
		fileDict, ok := file.(map[string]any)
		if !ok {
			return fmt.Errorf("file entry is not a valid dictionary, got %T", file)
		}
		fileInfo, err := parseFile(fileDict)
		if err != nil {
			return fmt.Errorf("failed to parse file: %w", err)
		}
		info.Files = append(info.Files, fileInfo)
	}
	return nil
}

// parseFile parses a single file entry
func parseFile(fileDict map[string]any) (File, error) {
	var fileInfo File

	length, ok := fileDict[_keyLength].(int64)
	if !ok {
		return fileInfo, fmt.Errorf("file length missing or not a valid type")
	}
	fileInfo.Length = length

	if md5sum, ok := fileDict[_keyMd5sum].(string); ok {
		fileInfo.Md5sum = md5sum
	}

	path, ok := fileDict[_keyPath].([]any)
	if !ok {
		return fileInfo, fmt.Errorf("path missing or of incorrect type")
	}
	for _, p := range path {
		pStr, ok := p.(string)
		if !ok {
			return fileInfo, fmt.Errorf("path element is not a valid type, got %T", p)
		}
		fileInfo.Path = append(fileInfo.Path, pStr)
	}
	return fileInfo, nil
}
