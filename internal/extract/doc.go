// Package extract turns an album page into a model.Album.
//
// The page is expected to carry the album heading in an h1 element
// ("Artist - Album"), the cover in .album-img[data-src] and one
// .playlist__item element per track:
//
//	<li class="playlist__item">
//	  <span class="playlist__position">1</span>
//	  <div class="playlist__details"><a class="strong" href="...">Title</a></div>
//	  <span class="playlist__control play" data-url="/track/play/123/title.mp3"></span>
//	</li>
//
// Tracks whose play control has no data-url (songs removed from the page
// player) get a source rebuilt from the heading link, which ends in
// "<name>-<id>". The rebuilt path is /track/play/<id>/<name>.mp3.
//
// Every reference is resolved against https://<host of the album URL>.
package extract
