package cluster

import "errors"

// Cluster ドメインのエラー定義
var (
	ErrClusterNotFound = errors.New("クラスタが見つかりません")
	ErrInvalidRotation = errors.New("回転角度は0, 90, 180, 270のいずれかを指定してください")
	ErrInvalidGrid     = errors.New("グリッドの行数・列数は1以上である必要があります")
	ErrGridTooDeep     = errors.New("グリッドは少なくとも一辺が2以下である必要があります")
	ErrClusterFull     = errors.New("クラスタの座席数が上限に達しています")
	ErrClusterInUse    = errors.New("クラスタに座席が残っているため削除できません")
)
